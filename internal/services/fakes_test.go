package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"bust-order-backend/internal/meshy"
	"bust-order-backend/internal/models"
	"bust-order-backend/internal/payments"

	"github.com/google/uuid"
)

// memRepo mirrors the conditional semantics of the Postgres repository.
type memRepo struct {
	mu      sync.Mutex
	orders  map[uuid.UUID]*models.Order
	uploads map[uuid.UUID][]models.Upload
	clock   time.Time
}

func newMemRepo() *memRepo {
	return &memRepo{
		orders:  map[uuid.UUID]*models.Order{},
		uploads: map[uuid.UUID][]models.Upload{},
		clock:   time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (r *memRepo) put(o models.Order) *models.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	cp := o
	r.orders[o.ID] = &cp
	return &o
}

func (r *memRepo) get(id uuid.UUID) models.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.orders[id]
}

func (r *memRepo) CreateOrder(_ context.Context, o *models.Order) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	cp.ID = uuid.New()
	cp.CreatedAt = r.clock
	cp.UpdatedAt = r.clock
	r.orders[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memRepo) GetOrder(_ context.Context, id uuid.UUID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("failed to get order: %w", sql.ErrNoRows)
	}
	cp := *o
	return &cp, nil
}

func (r *memRepo) ListOrders(_ context.Context, f models.OrderFilter) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.Ready && !o.ReadyForProduction() {
			continue
		}
		if f.Query != "" && !strings.Contains(strings.ToLower(o.Email), strings.ToLower(f.Query)) {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memRepo) CreateUpload(_ context.Context, orderID uuid.UUID, path string) (*models.Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clock = r.clock.Add(time.Second)
	u := models.Upload{ID: uuid.New(), OrderID: orderID, StoragePath: path, CreatedAt: r.clock}
	r.uploads[orderID] = append(r.uploads[orderID], u)
	return &u, nil
}

func (r *memRepo) LatestUpload(_ context.Context, orderID uuid.UUID) (*models.Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ups := r.uploads[orderID]
	if len(ups) == 0 {
		return nil, fmt.Errorf("failed to get latest upload: %w", sql.ErrNoRows)
	}
	u := ups[len(ups)-1]
	return &u, nil
}

func (r *memRepo) update(id uuid.UUID, fn func(o *models.Order) bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return false
	}
	return fn(o)
}

func (r *memRepo) MarkPreviewSubmitted(_ context.Context, id uuid.UUID, taskID string, at time.Time) error {
	r.update(id, func(o *models.Order) bool {
		o.Status = models.StatusProcessing
		o.MeshyImageTaskID = models.NullString(taskID)
		o.GenerationStartedAt = sql.NullTime{Time: at, Valid: true}
		o.PreviewLastError = sql.NullString{}
		return true
	})
	return nil
}

func (r *memRepo) FailPreview(_ context.Context, id uuid.UUID, msg string) error {
	r.update(id, func(o *models.Order) bool {
		o.Status = models.StatusFailed
		o.PreviewLastError = models.NullString(msg)
		return true
	})
	return nil
}

func (r *memRepo) MarkPreviewReady(_ context.Context, id uuid.UUID, taskID, path string) (bool, error) {
	return r.update(id, func(o *models.Order) bool {
		if o.ClayPreviewPath.Valid || o.MeshyImageTaskID.String != taskID {
			return false
		}
		o.Status = models.StatusPreviewReady
		o.ClayPreviewPath = models.NullString(path)
		o.PreviewLastError = sql.NullString{}
		return true
	}), nil
}

func (r *memRepo) StartPreviewRetry(_ context.Context, id uuid.UUID, taskID string, at time.Time, consume bool) (bool, error) {
	return r.update(id, func(o *models.Order) bool {
		credit := 0
		if consume {
			credit = 1
		}
		if !o.Status.CanRetryPreview() || o.RetryCredits < credit {
			return false
		}
		o.Status = models.StatusProcessing
		o.PreviewAttempts++
		o.RetryCredits -= credit
		o.GenerationStartedAt = sql.NullTime{Time: at, Valid: true}
		o.MeshyImageTaskID = models.NullString(taskID)
		o.ClayPreviewPath = sql.NullString{}
		o.PreviewLastError = sql.NullString{}
		return true
	}), nil
}

func (r *memRepo) SetModelTaskIfEmpty(_ context.Context, id uuid.UUID, taskID string) (bool, error) {
	return r.update(id, func(o *models.Order) bool {
		if o.MeshyModelTaskID.Valid || !o.Status.IsPaidLike() {
			return false
		}
		o.MeshyModelTaskID = models.NullString(taskID)
		o.MeshyModelAttempts = 0
		o.MeshyModelLastError = sql.NullString{}
		return true
	}), nil
}

func (r *memRepo) RecordModelFailure(_ context.Context, id uuid.UUID, msg string) (int, error) {
	var n int
	ok := r.update(id, func(o *models.Order) bool {
		o.MeshyModelAttempts++
		o.MeshyModelLastError = models.NullString(msg)
		n = o.MeshyModelAttempts
		return true
	})
	if !ok {
		return 0, sql.ErrNoRows
	}
	return n, nil
}

func (r *memRepo) FailModel(_ context.Context, id uuid.UUID, msg string) error {
	r.update(id, func(o *models.Order) bool {
		o.Status = models.StatusFailed
		o.MeshyModelLastError = models.NullString(msg)
		return true
	})
	return nil
}

func (r *memRepo) SetModelAssets(_ context.Context, id uuid.UUID, glb, obj sql.NullString) error {
	r.update(id, func(o *models.Order) bool {
		if glb.Valid {
			o.ModelGLBPath = glb
		}
		if obj.Valid {
			o.ModelOBJPath = obj
		}
		o.MeshyModelLastError = sql.NullString{}
		return true
	})
	return nil
}

func (r *memRepo) MarkPaid(_ context.Context, id uuid.UUID, s models.Shipping, filament string) (bool, error) {
	return r.update(id, func(o *models.Order) bool {
		o.Status = models.StatusPaid
		if o.FilamentColor.String == "" && filament != "" {
			o.FilamentColor = models.NullString(filament)
		}
		o.Shipping = s
		return true
	}), nil
}

func (r *memRepo) AddRetryCredit(_ context.Context, id uuid.UUID, s models.Shipping) (bool, error) {
	return r.update(id, func(o *models.Order) bool {
		o.RetryCredits++
		o.Shipping = s
		return true
	}), nil
}

func (r *memRepo) SetFilament(_ context.Context, id uuid.UUID, f models.FilamentColor) error {
	r.update(id, func(o *models.Order) bool {
		o.FilamentColor = models.NullString(string(f))
		return true
	})
	return nil
}

func (r *memRepo) SetStatus(_ context.Context, id uuid.UUID, st models.Status) (bool, error) {
	return r.update(id, func(o *models.Order) bool {
		o.Status = st
		return true
	}), nil
}

type memBlobs struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploadErr map[string]error
	signErr   error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: map[string][]byte{}, uploadErr: map[string]error{}}
}

func (b *memBlobs) key(bucket, path string) string { return bucket + "/" + path }

func (b *memBlobs) Upload(_ context.Context, bucket, path string, data []byte, _ string, upsert bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.uploadErr[path]; err != nil {
		return err
	}
	k := b.key(bucket, path)
	if _, exists := b.objects[k]; exists && !upsert {
		return errors.New("object already exists")
	}
	b.objects[k] = append([]byte(nil), data...)
	return nil
}

func (b *memBlobs) Download(_ context.Context, bucket, path string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[b.key(bucket, path)]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func (b *memBlobs) SignedURL(_ context.Context, bucket, path string, ttl time.Duration) (string, error) {
	if b.signErr != nil {
		return "", b.signErr
	}
	return fmt.Sprintf("https://blobs.test/%s/%s?ttl=%d", bucket, path, int(ttl.Seconds())), nil
}

func (b *memBlobs) List(_ context.Context, bucket, prefix string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	p := b.key(bucket, strings.TrimSuffix(prefix, "/")+"/")
	for k := range b.objects {
		if strings.HasPrefix(k, p) {
			out = append(out, strings.TrimPrefix(k, bucket+"/"))
		}
	}
	sort.Strings(out)
	return out, nil
}

func (b *memBlobs) has(bucket, path string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[b.key(bucket, path)]
	return ok
}

// fakeTasks serves scripted task states keyed by task id.
type fakeTasks struct {
	mu          sync.Mutex
	seq         int
	submitErr   error
	preview     map[string]*meshy.Task
	model       map[string]*meshy.Task
	pollErr     error
	downloads   map[string][]byte
	prompts     []string
	modelSubmit []string
}

func newFakeTasks() *fakeTasks {
	return &fakeTasks{
		preview:   map[string]*meshy.Task{},
		model:     map[string]*meshy.Task{},
		downloads: map[string][]byte{},
	}
}

func (f *fakeTasks) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeTasks) SubmitPreview(_ context.Context, req meshy.PreviewRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.prompts = append(f.prompts, req.Prompt)
	id := f.nextID("img")
	f.preview[id] = &meshy.Task{ID: id, Status: meshy.TaskPending}
	return id, nil
}

func (f *fakeTasks) PollPreview(_ context.Context, id string) (*meshy.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	t, ok := f.preview[id]
	if !ok {
		return nil, errors.New("task not found")
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTasks) SubmitModel(_ context.Context, imageURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.modelSubmit = append(f.modelSubmit, imageURL)
	id := f.nextID("mdl")
	f.model[id] = &meshy.Task{ID: id, Status: meshy.TaskPending}
	return id, nil
}

func (f *fakeTasks) PollModel(_ context.Context, id string) (*meshy.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	t, ok := f.model[id]
	if !ok {
		return nil, errors.New("task not found")
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTasks) Download(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.downloads[url]
	if !ok {
		return nil, errors.New("download failed")
	}
	return data, nil
}

func (f *fakeTasks) setPreview(id string, t meshy.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = id
	f.preview[id] = &t
}

func (f *fakeTasks) setModel(id string, t meshy.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = id
	f.model[id] = &t
}

type recordedEvent struct {
	name    string
	payload map[string]any
}

type memEvents struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (m *memEvents) Publish(_ context.Context, name string, payload map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, recordedEvent{name: name, payload: payload})
	return nil
}

func (m *memEvents) names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.name
	}
	return out
}

type memTokens struct {
	issued map[string]time.Duration
}

func (m *memTokens) Issue(_ context.Context, token string, ttl time.Duration) error {
	m.issued[token] = ttl
	return nil
}

func (m *memTokens) Valid(_ context.Context, token string) (bool, error) {
	_, ok := m.issued[token]
	return ok, nil
}

type fakeGateway struct {
	params     []payments.CheckoutParams
	completion *payments.Completion
	parseErr   error
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, p payments.CheckoutParams) (string, error) {
	g.params = append(g.params, p)
	return "https://checkout.test/session/" + p.OrderID, nil
}

func (g *fakeGateway) ParseWebhook(_ []byte, _ string) (*payments.Completion, error) {
	return g.completion, g.parseErr
}

// harness wires every service over the in-memory fakes.
type harness struct {
	repo      *memRepo
	blobs     *memBlobs
	tasks     *fakeTasks
	events    *memEvents
	gateway   *fakeGateway
	storage   *StorageService
	lifecycle *LifecycleService
	intake    *IntakeService
	phone     *PhoneUploadService
	payments  *PaymentService
	admin     *AdminService
}

func newHarness() *harness {
	h := &harness{
		repo:    newMemRepo(),
		blobs:   newMemBlobs(),
		tasks:   newFakeTasks(),
		events:  &memEvents{},
		gateway: &fakeGateway{},
	}
	h.storage = NewStorageService(h.blobs, "Uploads", "Outputs", 30*time.Minute, nil)
	h.lifecycle = NewLifecycleService(h.repo, h.tasks, h.storage, h.events, LifecycleConfig{
		MinPreviewBytes:     1000,
		ModelMaxAttempts:    8,
		FreePreviewAttempts: 2,
	}, nil)
	h.phone = NewPhoneUploadService(h.storage, h.blobs, nil, nil)
	h.intake = NewIntakeService(h.repo, h.storage, h.phone, h.lifecycle, h.events, nil)
	h.payments = NewPaymentService(h.repo, h.gateway, h.events, "https://busts.test", nil)
	h.admin = NewAdminService(h.repo, h.storage, h.events, "letmein", nil)
	return h
}

func bigImage() []byte {
	return []byte(strings.Repeat("x", 4096))
}

// seedProcessing stores an order in processing with an upload and a pending preview task.
func (h *harness) seedProcessing() (*models.Order, string) {
	taskID, _ := h.tasks.SubmitPreview(context.Background(), meshy.PreviewRequest{})
	o := h.repo.put(models.Order{
		Status:           models.StatusProcessing,
		Email:            "jane@example.com",
		BustStyle:        models.StyleClassical,
		BustHeightMM:     200,
		PriceCents:       6900,
		PreviewAttempts:  1,
		MeshyImageTaskID: models.NullString(taskID),
	})
	_, _ = h.repo.CreateUpload(context.Background(), o.ID, o.ID.String()+"/1-face.jpg")
	return o, taskID
}

// seedPaid stores a paid order with a stored clay preview and no model task.
func (h *harness) seedPaid() *models.Order {
	o := h.repo.put(models.Order{
		Status:          models.StatusPaid,
		Email:           "jane@example.com",
		BustStyle:       models.StyleModern,
		BustHeightMM:    100,
		PriceCents:      3900,
		PreviewAttempts: 1,
		FilamentColor:   models.NullString("marble_white"),
	})
	path := ClayPreviewPath(o.ID)
	_ = h.blobs.Upload(context.Background(), "Outputs", path, bigImage(), "image/png", true)
	h.repo.update(o.ID, func(stored *models.Order) bool {
		stored.ClayPreviewPath = models.NullString(path)
		return true
	})
	return o
}
