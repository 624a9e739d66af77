package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"bakery-service/internal/dto"
	"bakery-service/internal/media"
	"bakery-service/internal/repository"
	"bakery-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MediaStore хранит вложения; Remove откатывает Save, если заказ не сохранился
type MediaStore interface {
	Save(kind media.Kind, filename string, r io.Reader) (string, error)
	Remove(ref string) error
}

const (
	fieldDesignImage = "design_image"
	fieldPrintImage  = "print_image"
	fieldAudio       = "instruction_audio"
)

type DesignerHandler struct {
	designer service.DesignerService
	media    MediaStore
	log      *zap.Logger
}

func NewDesignerHandler(designer service.DesignerService, store MediaStore, log *zap.Logger) *DesignerHandler {
	return &DesignerHandler{designer: designer, media: store, log: log}
}

// uploads собирает ссылки сохранённых файлов запроса, чтобы удалить их при ошибке
type uploads struct {
	store MediaStore
	refs  []string
	log   *zap.Logger
}

// save сохраняет файл из поля формы; ok == false, если поле не передано
func (u *uploads) save(c *gin.Context, field string, kind media.Kind) (ref string, ok bool, err error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	ref, err = u.saveHeader(fh, kind)
	if err != nil {
		return "", false, err
	}
	return ref, true, nil
}

func (u *uploads) saveHeader(fh *multipart.FileHeader, kind media.Kind) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	ref, err := u.store.Save(kind, fh.Filename, f)
	if err != nil {
		return "", err
	}
	u.refs = append(u.refs, ref)
	return ref, nil
}

func (u *uploads) rollback() {
	for _, ref := range u.refs {
		if err := u.store.Remove(ref); err != nil {
			u.log.Warn("Не удалось удалить загруженный файл", zap.String("ref", ref), zap.Error(err))
		}
	}
	u.refs = nil
}

// Place: multipart-форма, design_image и print_image обязательны, instruction_audio — нет
func (h *DesignerHandler) Place(c *gin.Context) {
	var form dto.PlaceDesignerForm
	if err := c.ShouldBind(&form); err != nil {
		badRequest(c, h.log, "invalid form", err)
		return
	}
	factoryID, err := uuid.Parse(form.FactoryID)
	if err != nil {
		badRequest(c, h.log, "invalid factory_id", err)
		return
	}

	up := &uploads{store: h.media, log: h.log}
	in := service.PlaceDesignerInput{
		FactoryID:     factoryID,
		Theme:         form.Theme,
		MessageOnCake: form.MessageOnCake,
		Weight:        form.Weight,
		PriceCents:    form.PriceCents,
		Quantity:      form.Quantity,
	}

	var ok bool
	if in.DesignImage, ok, err = up.save(c, fieldDesignImage, media.KindDesign); err != nil || !ok {
		h.uploadFailed(c, up, fieldDesignImage, err)
		return
	}
	if in.PrintImage, ok, err = up.save(c, fieldPrintImage, media.KindPrint); err != nil || !ok {
		h.uploadFailed(c, up, fieldPrintImage, err)
		return
	}
	audio, ok, err := up.save(c, fieldAudio, media.KindAudio)
	if err != nil {
		h.uploadFailed(c, up, fieldAudio, err)
		return
	}
	if ok {
		in.AudioInstruction = &audio
	}

	v, err := h.designer.Place(c.Request.Context(), in)
	if err != nil {
		up.rollback()
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toDesignerOrder(*v))
}

// Update: частичное обновление, новые файлы заменяют старые ссылки
func (h *DesignerHandler) Update(c *gin.Context) {
	id, ok := parsePathID(c, h.log)
	if !ok {
		return
	}
	var form dto.UpdateDesignerForm
	if err := c.ShouldBind(&form); err != nil {
		badRequest(c, h.log, "invalid form", err)
		return
	}

	patch := repository.DesignerPatch{
		Theme:         form.Theme,
		MessageOnCake: form.MessageOnCake,
		Weight:        form.Weight,
		PriceCents:    form.PriceCents,
		Quantity:      form.Quantity,
	}

	up := &uploads{store: h.media, log: h.log}
	files := []struct {
		field string
		kind  media.Kind
		dst   **string
	}{
		{fieldDesignImage, media.KindDesign, &patch.DesignImage},
		{fieldPrintImage, media.KindPrint, &patch.PrintImage},
		{fieldAudio, media.KindAudio, &patch.AudioInstruction},
	}
	for _, f := range files {
		ref, saved, err := up.save(c, f.field, f.kind)
		if err != nil {
			h.uploadFailed(c, up, f.field, err)
			return
		}
		if saved {
			*f.dst = &ref
		}
	}

	v, err := h.designer.Update(c.Request.Context(), id, patch)
	if err != nil {
		up.rollback()
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toDesignerOrder(*v))
}

func (h *DesignerHandler) List(c *gin.Context) {
	list, err := h.designer.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	out := make([]dto.DesignerOrder, len(list))
	for i := range list {
		out[i] = toDesignerOrder(list[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *DesignerHandler) Accept(c *gin.Context) {
	h.transition(c, h.designer.Accept)
}

func (h *DesignerHandler) Reject(c *gin.Context) {
	h.transition(c, h.designer.Reject)
}

func (h *DesignerHandler) Ship(c *gin.Context) {
	h.transition(c, h.designer.Ship)
}

func (h *DesignerHandler) Receive(c *gin.Context) {
	h.transition(c, h.designer.Receive)
}

func (h *DesignerHandler) transition(c *gin.Context, op transitionFunc) {
	id, ok := parsePathID(c, h.log)
	if !ok {
		return
	}
	res, err := op(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toTransition(res))
}

func (h *DesignerHandler) uploadFailed(c *gin.Context, up *uploads, field string, err error) {
	up.rollback()
	if err == nil {
		badRequest(c, h.log, field+" is required", http.ErrMissingFile)
		return
	}
	if errors.Is(err, media.ErrUnsupportedKind) || errors.Is(err, media.ErrTooLarge) {
		respondError(c, h.log, err)
		return
	}
	badRequest(c, h.log, "invalid "+field, err)
}
