package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"bakery-service/internal/models"
	"bakery-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// bulkWeights — веса, которые принимает CSV-импорт
var bulkWeights = map[int32]bool{1: true, 2: true, 3: true}

type AddCakeInput struct {
	Name       string
	Weight     int32
	PriceCents int64
}

type BulkImportResult struct {
	Added   []string
	Skipped int
}

type CatalogService interface {
	// Quote ищет цену без учёта регистра имени
	Quote(ctx context.Context, name string, weight int32) (*models.Cake, error)
	List(ctx context.Context) ([]models.Cake, error)

	Add(ctx context.Context, in AddCakeInput) (*models.Cake, error)
	UpdatePrice(ctx context.Context, id uuid.UUID, priceCents int64) (*models.Cake, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// BulkImport читает CSV с колонками name,weight,price; невалидные строки и дубли пропускаются
	BulkImport(ctx context.Context, r io.Reader) (*BulkImportResult, error)
}

type catalogService struct {
	repo *repository.Repository
	options
}

func NewCatalogService(repo *repository.Repository, opts ...Option) CatalogService {
	return &catalogService{repo: repo, options: buildOptions(opts)}
}

func (s *catalogService) Quote(ctx context.Context, name string, weight int32) (*models.Cake, error) {
	c, err := s.repo.Cakes.FindByNameWeight(ctx, strings.TrimSpace(name), weight)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCakeNotFound
	}
	return c, nil
}

func (s *catalogService) List(ctx context.Context) ([]models.Cake, error) {
	return s.repo.Cakes.List(ctx)
}

func (s *catalogService) manager(ctx context.Context) (Actor, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return Actor{}, err
	}
	if !canManageCatalog(actor.Role) {
		return Actor{}, ErrForbidden
	}
	return actor, nil
}

func (s *catalogService) Add(ctx context.Context, in AddCakeInput) (*models.Cake, error) {
	actor, err := s.manager(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return nil, validationf("name is required")
	case in.Weight <= 0:
		return nil, validationf("weight must be > 0")
	case in.PriceCents <= 0:
		return nil, validationf("price must be > 0")
	}

	var cake *models.Cake
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		existing, err := tx.Cakes.FindByNameWeight(ctx, name, in.Weight)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrCakeExists
		}
		now := s.now()
		cake = &models.Cake{Name: name, Weight: in.Weight, PriceCents: in.PriceCents, CreatedAt: now, UpdatedAt: now}
		return tx.Cakes.Create(ctx, cake)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("cake added",
		zap.String("name", cake.Name),
		zap.Int32("weight", cake.Weight),
		zap.Int64("price_cents", cake.PriceCents),
		zap.String("actor_id", actor.ID.String()),
	)
	return cake, nil
}

func (s *catalogService) UpdatePrice(ctx context.Context, id uuid.UUID, priceCents int64) (*models.Cake, error) {
	if _, err := s.manager(ctx); err != nil {
		return nil, err
	}
	if priceCents <= 0 {
		return nil, validationf("price must be > 0")
	}

	ok, err := s.repo.Cakes.UpdatePrice(ctx, id, priceCents)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCakeNotFound
	}
	c, err := s.repo.Cakes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCakeNotFound
	}
	return c, nil
}

func (s *catalogService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.manager(ctx); err != nil {
		return err
	}
	ok, err := s.repo.Cakes.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCakeNotFound
	}
	return nil
}

func (s *catalogService) BulkImport(ctx context.Context, r io.Reader) (*BulkImportResult, error) {
	actor, err := s.manager(ctx)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, validationf("empty csv")
		}
		return nil, validationf("read csv header: %v", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, need := range []string{"name", "weight", "price"} {
		if _, ok := cols[need]; !ok {
			return nil, validationf("csv column %q is missing", need)
		}
	}

	res := &BulkImportResult{Added: []string{}}
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		for {
			rec, err := cr.Read()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return validationf("read csv: %v", err)
			}

			cake, ok := parseCakeRow(rec, cols)
			if !ok {
				res.Skipped++
				continue
			}
			existing, err := tx.Cakes.FindByNameWeight(ctx, cake.Name, cake.Weight)
			if err != nil {
				return err
			}
			if existing != nil {
				res.Skipped++
				continue
			}
			now := s.now()
			cake.CreatedAt, cake.UpdatedAt = now, now
			if err := tx.Cakes.Create(ctx, cake); err != nil {
				return err
			}
			res.Added = append(res.Added, fmt.Sprintf("%s (%d lb)", cake.Name, cake.Weight))
		}
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("cakes imported",
		zap.Int("added", len(res.Added)),
		zap.Int("skipped", res.Skipped),
		zap.String("actor_id", actor.ID.String()),
	)
	return res, nil
}

func parseCakeRow(rec []string, cols map[string]int) (*models.Cake, bool) {
	field := func(name string) string {
		i := cols[name]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	name := field("name")
	w, err := strconv.ParseInt(field("weight"), 10, 32)
	if err != nil {
		return nil, false
	}
	price, err := strconv.ParseFloat(field("price"), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return nil, false
	}
	cents := int64(math.Round(price * 100))
	if name == "" || !bulkWeights[int32(w)] || cents <= 0 {
		return nil, false
	}
	return &models.Cake{Name: name, Weight: int32(w), PriceCents: cents}, true
}
