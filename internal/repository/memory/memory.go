// Package memory is an in-process implementation of the repository interfaces.
// Transactions copy the whole dataset, run against the copy and swap it in on success,
// so a failed WithTx leaves nothing behind.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"bakery-service/internal/models"
	"bakery-service/internal/repository"

	"github.com/google/uuid"
)

type data struct {
	actors    map[uuid.UUID]models.Actor
	cakes     map[uuid.UUID]models.Cake
	orders    map[uuid.UUID]models.MainOrder
	lines     map[uuid.UUID]models.OrderLine
	lineOrder []uuid.UUID
	designer  map[uuid.UUID]models.DesignerOrder
}

func newData() *data {
	return &data{
		actors:   map[uuid.UUID]models.Actor{},
		cakes:    map[uuid.UUID]models.Cake{},
		orders:   map[uuid.UUID]models.MainOrder{},
		lines:    map[uuid.UUID]models.OrderLine{},
		designer: map[uuid.UUID]models.DesignerOrder{},
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.actors {
		c.actors[k] = v
	}
	for k, v := range d.cakes {
		c.cakes[k] = v
	}
	for k, v := range d.orders {
		c.orders[k] = v
	}
	for k, v := range d.lines {
		c.lines[k] = v
	}
	c.lineOrder = append([]uuid.UUID(nil), d.lineOrder...)
	for k, v := range d.designer {
		c.designer[k] = v
	}
	return c
}

type Store struct {
	mu   sync.Mutex
	data *data
	now  func() time.Time
}

func New() *Store {
	return &Store{data: newData(), now: time.Now}
}

// Repository возвращает репозиторий поверх хранилища; операции вне WithTx атомарны по одной.
func (s *Store) Repository() *repository.Repository {
	v := &view{lock: &s.mu, get: func() *data { return s.data }, now: s.now}
	return repository.Compose(actors{v}, cakes{v}, mainOrders{v}, orderLines{v}, designerOrders{v}, s)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx *repository.Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	v := &view{get: func() *data { return work }, now: s.now}
	tx := repository.Compose(actors{v}, cakes{v}, mainOrders{v}, orderLines{v}, designerOrders{v}, nested{v})
	if err := fn(tx); err != nil {
		return err
	}
	s.data = work
	return nil
}

// nested — транзакция внутри транзакции работает с той же копией
type nested struct{ v *view }

func (n nested) WithTx(ctx context.Context, fn func(tx *repository.Repository) error) error {
	v := n.v
	return fn(repository.Compose(actors{v}, cakes{v}, mainOrders{v}, orderLines{v}, designerOrders{v}, n))
}

type view struct {
	lock *sync.Mutex
	get  func() *data
	now  func() time.Time
}

func (v *view) acquire() (*data, func()) {
	if v.lock == nil {
		return v.get(), func() {}
	}
	v.lock.Lock()
	return v.get(), v.lock.Unlock
}

type actors struct{ v *view }

func (r actors) Create(ctx context.Context, a *models.Actor) error {
	d, unlock := r.v.acquire()
	defer unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = r.v.now()
	}
	d.actors[a.ID] = *a
	return nil
}

func (r actors) GetByID(ctx context.Context, id uuid.UUID) (*models.Actor, error) {
	d, unlock := r.v.acquire()
	defer unlock()
	a, ok := d.actors[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r actors) GetByIDWithRoles(ctx context.Context, id uuid.UUID, roles ...models.Role) (*models.Actor, error) {
	a, err := r.GetByID(ctx, id)
	if err != nil || a == nil {
		return nil, err
	}
	for _, role := range roles {
		if a.Role == role {
			return a, nil
		}
	}
	return nil, nil
}

func (r actors) ListByRoles(ctx context.Context, roles ...models.Role) ([]models.Actor, error) {
	d, unlock := r.v.acquire()
	defer unlock()
	var out []models.Actor
	for _, a := range d.actors {
		for _, role := range roles {
			if a.Role == role {
				out = append(out, a)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type cakes struct{ v *view }

func (r cakes) Create(ctx context.Context, c *models.Cake) error {
	d, unlock := r.v.acquire()
	defer unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := r.v.now()
	c.CreatedAt, c.UpdatedAt = now, now
	d.cakes[c.ID] = *c
	return nil
}

func (r cakes) GetByID(ctx context.Context, id uuid.UUID) (*models.Cake, error) {
	d, unlock := r.v.acquire()
	defer unlock()
	c, ok := d.cakes[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r cakes) FindByNameWeight(ctx context.Context, name string, weight int32) (*models.Cake, error) {
	d, unlock := r.v.acquire()
	defer unlock()
	for _, c := range d.cakes {
		if c.Weight == weight && strings.EqualFold(c.Name, name) {
			return &c, nil
		}
	}
	return nil, nil
}

func (r cakes) List(ctx context.Context) ([]models.Cake, error) {
	d, unlock := r.v.acquire()
	defer unlock()
	out := make([]models.Cake, 0, len(d.cakes))
	for _, c := range d.cakes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Weight < out[j].Weight
	})
	return out, nil
}

func (r cakes) UpdatePrice(ctx context.Context, id uuid.UUID, priceCents int64) (bool, error) {
	d, unlock := r.v.acquire()
	defer unlock()
	c, ok := d.cakes[id]
	if !ok {
		return false, nil
	}
	c.PriceCents = priceCents
	c.UpdatedAt = r.v.now()
	d.cakes[id] = c
	return true, nil
}

func (r cakes) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	d, unlock := r.v.acquire()
	defer unlock()
	if _, ok := d.cakes[id]; !ok {
		return false, nil
	}
	delete(d.cakes, id)
	return true, nil
}

type mainOrders struct{ v *view }

func (r mainOrders) Create(ctx context.Context, o *models.MainOrder) error {
	d, unlock := r.v.acquire()
	defer unlock()
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = r.v.now()
	}
	stored := *o
	stored.Lines = nil
	d.orders[o.ID] = stored
	return nil
}

func (r mainOrders) GetByID(ctx context.Context, id uuid.UUID) (*models.MainOrder, error) {
	d, unlock := r.v.acquire()
	defer unlock()
	o, ok := d.orders[id]
	if !ok {
		return nil, nil
	}
	o.Lines = linesOf(d, id, nil)
	return &o, nil
}

func (r mainOrders) List(ctx context.Context, f repository.MainOrderListFilter) ([]models.MainOrder, int64, error) {
	d, unlock := r.v.acquire()
	defer unlock()

	var all []models.MainOrder
	for _, o := range d.orders {
		if f.PlacedBy != nil && o.PlacedBy != *f.PlacedBy {
			continue
		}
		o.Lines = linesOf(d, o.ID, f.Factory)
		if f.Factory != nil && len(o.Lines) == 0 {
			continue
		}
		all = append(all, o)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Offset >= len(all) {
		return []models.MainOrder{}, total, nil
	}
	end := f.Offset + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[f.Offset:end], total, nil
}

func linesOf(d *data, orderID uuid.UUID, factory *uuid.UUID) []models.OrderLine {
	var out []models.OrderLine
	for _, id := range d.lineOrder {
		l := d.lines[id]
		if l.MainOrderID != orderID {
			continue
		}
		if factory != nil && (l.AssignedFactory == nil || *l.AssignedFactory != *factory) {
			continue
		}
		out = append(out, l)
	}
	return out
}

type orderLines struct{ v *view }

func (r orderLines) Create(ctx context.Context, l *models.OrderLine) error {
	d, unlock := r.v.acquire()
	defer unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	now := r.v.now()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	if l.State == "" {
		l.State = models.StatePlaced
	}
	d.lines[l.ID] = *l
	d.lineOrder = append(d.lineOrder, l.ID)
	return nil
}

func (r orderLines) GetByID(ctx context.Context, id uuid.UUID) (*models.OrderLine, error) {
	d, unlock := r.v.acquire()
	defer unlock()
	l, ok := d.lines[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r orderLines) ListByMainOrder(ctx context.Context, mainOrderID uuid.UUID) ([]models.OrderLine, error) {
	d, unlock := r.v.acquire()
	defer unlock()
	return linesOf(d, mainOrderID, nil), nil
}

func (r orderLines) ListForBatch(ctx context.Context, mainOrderID, factoryID uuid.UUID, state models.OrderState) ([]models.OrderLine, error) {
	d, unlock := r.v.acquire()
	defer unlock()
	var out []models.OrderLine
	for _, l := range linesOf(d, mainOrderID, &factoryID) {
		if l.State == state {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r orderLines) ApplyTransition(ctx context.Context, t repository.Transition) (bool, error) {
	d, unlock := r.v.acquire()
	defer unlock()
	l, ok := d.lines[t.ID]
	if !ok || l.State != t.From || l.Version != t.Version {
		return false, nil
	}
	l.State = t.To
	if t.Quantity != nil {
		l.Quantity = *t.Quantity
	}
	l.Version++
	l.UpdatedAt = r.v.now()
	d.lines[t.ID] = l
	return true, nil
}

func (r orderLines) UpdateQuantity(ctx context.Context, id uuid.UUID, version int64, quantity int32) (bool, error) {
	d, unlock := r.v.acquire()
	defer unlock()
	l, ok := d.lines[id]
	if !ok || l.Version != version {
		return false, nil
	}
	l.Quantity = quantity
	l.Version++
	l.UpdatedAt = r.v.now()
	d.lines[id] = l
	return true, nil
}

func (r orderLines) ReceiptTotals(ctx context.Context, stores []uuid.UUID, since []time.Time) (map[uuid.UUID][]repository.ReceiptTotals, error) {
	d, unlock := r.v.acquire()
	defer unlock()
	out := make(map[uuid.UUID][]repository.ReceiptTotals, len(stores))
	if len(since) == 0 {
		return out, nil
	}
	wanted := make(map[uuid.UUID]bool, len(stores))
	for _, id := range stores {
		wanted[id] = true
	}
	for _, l := range d.lines {
		if !wanted[l.PlacedBy] {
			continue
		}
		if l.State != models.StateReceived && l.State != models.StateReceivedWithCondition {
			continue
		}
		o, ok := d.orders[l.MainOrderID]
		if !ok {
			continue
		}
		for i, t := range since {
			if o.CreatedAt.Before(t) {
				continue
			}
			totals, ok := out[l.PlacedBy]
			if !ok {
				totals = make([]repository.ReceiptTotals, len(since))
				out[l.PlacedBy] = totals
			}
			totals[i].OrdersReceived++
			totals[i].EarningCents += l.TotalCents()
		}
	}
	return out, nil
}

type designerOrders struct{ v *view }

func (r designerOrders) Create(ctx context.Context, o *models.DesignerOrder) error {
	d, unlock := r.v.acquire()
	defer unlock()
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	now := r.v.now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	if o.State == "" {
		o.State = models.StatePlaced
	}
	d.designer[o.ID] = *o
	return nil
}

func (r designerOrders) GetByID(ctx context.Context, id uuid.UUID) (*models.DesignerOrder, error) {
	d, unlock := r.v.acquire()
	defer unlock()
	o, ok := d.designer[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r designerOrders) List(ctx context.Context, f repository.DesignerListFilter) ([]models.DesignerOrder, error) {
	d, unlock := r.v.acquire()
	defer unlock()
	var out []models.DesignerOrder
	for _, o := range d.designer {
		if f.PlacedBy != nil && o.PlacedBy != *f.PlacedBy {
			continue
		}
		if f.Factory != nil && o.AssignedFactory != *f.Factory {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r designerOrders) ApplyTransition(ctx context.Context, t repository.Transition) (bool, error) {
	d, unlock := r.v.acquire()
	defer unlock()
	o, ok := d.designer[t.ID]
	if !ok || o.State != t.From || o.Version != t.Version {
		return false, nil
	}
	o.State = t.To
	if t.Quantity != nil {
		o.Quantity = *t.Quantity
	}
	o.Version++
	o.UpdatedAt = r.v.now()
	d.designer[t.ID] = o
	return true, nil
}

func (r designerOrders) Update(ctx context.Context, id uuid.UUID, version int64, patch repository.DesignerPatch) (bool, error) {
	d, unlock := r.v.acquire()
	defer unlock()
	o, ok := d.designer[id]
	if !ok || o.Version != version {
		return false, nil
	}
	patch.ApplyTo(&o)
	o.Version++
	o.UpdatedAt = r.v.now()
	d.designer[id] = o
	return true, nil
}

func (r designerOrders) MediaRefs(ctx context.Context) ([]string, error) {
	d, unlock := r.v.acquire()
	defer unlock()
	var refs []string
	for _, o := range d.designer {
		refs = append(refs, o.DesignImage, o.PrintImage)
		if o.AudioInstruction != nil {
			refs = append(refs, *o.AudioInstruction)
		}
	}
	return refs, nil
}
