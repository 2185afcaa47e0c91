package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"bust-order-backend/internal/events"
	"bust-order-backend/internal/meshy"
	"bust-order-backend/internal/models"
	"bust-order-backend/internal/payments"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() CreateOrderInput {
	return CreateOrderInput{
		Email:     "jane@example.com",
		BustSize:  200,
		Style:     models.StyleClassical,
		StyleHint: "keep the glasses",
		Photo:     &Photo{Filename: "face.jpg", ContentType: "image/jpeg", Size: 4096, Data: bigImage()},
	}
}

func TestCreateOrder_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *CreateOrderInput)
	}{
		{name: "missing email", mutate: func(in *CreateOrderInput) { in.Email = "" }},
		{name: "bad email", mutate: func(in *CreateOrderInput) { in.Email = "not-an-email" }},
		{name: "bad size", mutate: func(in *CreateOrderInput) { in.BustSize = 150 }},
		{name: "bad style", mutate: func(in *CreateOrderInput) { in.Style = "baroque" }},
		{name: "no photo and no token", mutate: func(in *CreateOrderInput) { in.Photo = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			in := validInput()
			tt.mutate(&in)

			_, err := h.intake.CreateOrder(context.Background(), in)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Empty(t, h.repo.orders)
		})
	}
}

func TestCreateOrder_DirectUpload(t *testing.T) {
	h := newHarness()

	resp, err := h.intake.CreateOrder(context.Background(), validInput())
	require.NoError(t, err)
	require.Empty(t, resp.Warning)

	id := uuid.MustParse(resp.OrderID)
	stored := h.repo.get(id)
	assert.Equal(t, models.StatusProcessing, stored.Status)
	assert.Equal(t, int64(6900), stored.PriceCents)
	assert.Equal(t, 1, stored.PreviewAttempts)
	assert.Equal(t, resp.MeshyImageTaskID, stored.MeshyImageTaskID.String)
	assert.Contains(t, h.tasks.prompts[0], "keep the glasses")

	up, err := h.repo.LatestUpload(context.Background(), id)
	require.NoError(t, err)
	assert.Contains(t, up.StoragePath, id.String()+"/")
	assert.True(t, h.blobs.has("Uploads", up.StoragePath))
	assert.Equal(t, []string{events.OrderCreated}, h.events.names())
}

func TestCreateOrder_PartialFailuresReturnWarning(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(h *harness, in *CreateOrderInput)
		warning string
	}{
		{
			name: "oversized image",
			setup: func(h *harness, in *CreateOrderInput) {
				in.Photo.Size = MaxPhotoBytes + 1
			},
			warning: "Image must be less than 10MB",
		},
		{
			name: "phone photo missing",
			setup: func(h *harness, in *CreateOrderInput) {
				in.Photo = nil
				in.PhoneUploadToken = uuid.NewString()
			},
			warning: "No phone photo found yet",
		},
		{
			name: "phone token never issued",
			setup: func(h *harness, in *CreateOrderInput) {
				h.phone.tokens = &memTokens{issued: map[string]time.Duration{}}
				in.Photo = nil
				in.PhoneUploadToken = uuid.NewString()
			},
			warning: "Phone upload link is invalid or expired",
		},
		{
			name: "provider rejects task",
			setup: func(h *harness, in *CreateOrderInput) {
				h.tasks.submitErr = errors.New("401 unauthorized")
			},
			warning: "Failed to create preview task",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			in := validInput()
			tt.setup(h, &in)

			resp, err := h.intake.CreateOrder(context.Background(), in)
			require.NoError(t, err)
			assert.Contains(t, resp.Warning, tt.warning)
			assert.Empty(t, resp.MeshyImageTaskID)

			stored := h.repo.get(uuid.MustParse(resp.OrderID))
			assert.Equal(t, models.StatusFailed, stored.Status)
			assert.False(t, stored.MeshyImageTaskID.Valid)
		})
	}
}

func TestCreateOrder_FromPhoneUpload(t *testing.T) {
	h := newHarness()
	token := uuid.NewString()
	_, err := h.phone.Upload(context.Background(), token, Photo{Filename: "IMG_1.PNG", ContentType: "image/png", Data: bigImage()})
	require.NoError(t, err)

	in := validInput()
	in.Photo = nil
	in.PhoneUploadToken = token

	resp, err := h.intake.CreateOrder(context.Background(), in)
	require.NoError(t, err)
	require.Empty(t, resp.Warning)

	stored := h.repo.get(uuid.MustParse(resp.OrderID))
	assert.Equal(t, token, stored.PhoneUploadToken.String)
	assert.Equal(t, models.StatusProcessing, stored.Status)

	up, err := h.repo.LatestUpload(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Contains(t, up.StoragePath, "phone-photo.png")
}

// TestOrderJourney walks an order from intake through payment to a stored model.
func TestOrderJourney(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	created, err := h.intake.CreateOrder(ctx, validInput())
	require.NoError(t, err)
	id := uuid.MustParse(created.OrderID)

	stored := h.repo.get(id)
	require.Equal(t, models.StatusProcessing, stored.Status)
	require.Equal(t, int64(6900), stored.PriceCents)
	require.True(t, stored.MeshyImageTaskID.Valid)

	h.tasks.setPreview(stored.MeshyImageTaskID.String, meshy.Task{
		Status: meshy.TaskSucceeded, Progress: 100, HasProgress: true,
		ImageURLs: []string{"https://meshy.test/clay.png"},
	})
	h.tasks.downloads["https://meshy.test/clay.png"] = bigImage()

	resp, err := h.lifecycle.Advance(ctx, id)
	require.NoError(t, err)
	require.Equal(t, models.StatusPreviewReady, resp.Order.Status)
	require.NotNil(t, resp.Order.ClayPreviewURL)

	h.gateway.completion = &payments.Completion{
		OrderID:       id.String(),
		Mode:          payments.ModeOrder,
		FilamentColor: "wood_tone",
		Shipping: models.Shipping{
			Name:    models.NullString("Jane Doe"),
			Line1:   models.NullString("Main St 1"),
			City:    models.NullString("Utrecht"),
			Country: models.NullString("NL"),
		},
	}
	require.NoError(t, h.payments.HandleWebhook(ctx, []byte("{}"), "t=1,v1=sig"))

	stored = h.repo.get(id)
	require.Equal(t, models.StatusPaid, stored.Status)
	assert.Equal(t, "Jane Doe", stored.Shipping.Name.String)
	assert.Equal(t, "Utrecht", stored.Shipping.City.String)
	assert.Equal(t, "wood_tone", stored.FilamentColor.String)

	resp, err = h.lifecycle.Advance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, resp.Order.Status)
	assert.Equal(t, 5, resp.Progress)

	stored = h.repo.get(id)
	require.True(t, stored.MeshyModelTaskID.Valid)
	h.tasks.setModel(stored.MeshyModelTaskID.String, meshy.Task{
		Status: meshy.TaskSucceeded, Progress: 100, HasProgress: true,
		ModelURLs: meshy.ModelURLs{GLB: "https://meshy.test/m.glb", OBJ: "https://meshy.test/m.obj"},
	})
	h.tasks.downloads["https://meshy.test/m.glb"] = []byte("glTF")
	h.tasks.downloads["https://meshy.test/m.obj"] = []byte("v 0 0 0")

	resp, err = h.lifecycle.Advance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 100, resp.Progress)

	stored = h.repo.get(id)
	assert.Equal(t, ModelGLBPath(id), stored.ModelGLBPath.String)
	assert.Equal(t, ModelOBJPath(id), stored.ModelOBJPath.String)
	assert.True(t, stored.ReadyForProduction())
}
