package services_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront/internal/cache"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

var rootActor = services.Actor{ID: 1, Username: "root"}

type productFixture struct {
	products  *MockProductRepository
	variants  *MockVariantRepository
	sequences *MockSequenceRepository
	service   *services.ProductService
}

func newProductFixture(hooks services.Hooks) *productFixture {
	f := &productFixture{
		products:  new(MockProductRepository),
		variants:  new(MockVariantRepository),
		sequences: new(MockSequenceRepository),
	}
	f.service = services.NewProductService(f.products, f.variants, f.sequences, hooks)
	return f
}

func (f *productFixture) assertExpectations(t *testing.T) {
	f.products.AssertExpectations(t)
	f.variants.AssertExpectations(t)
	f.sequences.AssertExpectations(t)
}

func TestProductService_CreateDefaultsToDraft(t *testing.T) {
	f := newProductFixture(services.Hooks{})

	f.products.On("ExistsActiveNameBrand", mock.Anything, "Bondi 8", "HOKA", uint64(0)).Return(false, nil).Once()
	f.sequences.On("Next", mock.Anything, repositories.SeqProducts).Return(uint64(1), nil).Once()
	f.products.On("Create", mock.Anything, mock.AnythingOfType("*models.Product")).Return(nil).Once()

	product, err := f.service.Create(ctx, rootActor, services.CreateProductInput{
		Name: "Bondi 8", Brand: "HOKA", Price: 6490, Description: "Max cushion",
	})

	require.NoError(t, err)
	assert.Equal(t, uint64(1), product.ID)
	assert.Equal(t, models.StatusDraft, product.Status)
	assert.Nil(t, product.PublishedAt)
	assert.True(t, product.IsActive)
	assert.Equal(t, "root", product.CreatedBy)
	assert.NotNil(t, product.Images)
	f.assertExpectations(t)
}

func TestProductService_CreatePublishedStampsPublishedAt(t *testing.T) {
	f := newProductFixture(services.Hooks{})

	f.products.On("ExistsActiveNameBrand", mock.Anything, "Clifton 9", "HOKA", uint64(0)).Return(false, nil).Once()
	f.sequences.On("Next", mock.Anything, repositories.SeqProducts).Return(uint64(2), nil).Once()
	f.products.On("Create", mock.Anything, mock.AnythingOfType("*models.Product")).Return(nil).Once()

	product, err := f.service.Create(ctx, rootActor, services.CreateProductInput{
		Name: "Clifton 9", Brand: "HOKA", Price: 145, Status: models.StatusPublished,
	})

	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, product.Status)
	require.NotNil(t, product.PublishedAt)
	assert.WithinDuration(t, time.Now(), *product.PublishedAt, 5*time.Second)
	f.assertExpectations(t)
}

func TestProductService_CreateConflict(t *testing.T) {
	f := newProductFixture(services.Hooks{})

	f.products.On("ExistsActiveNameBrand", mock.Anything, "Bondi 8", "HOKA", uint64(0)).Return(true, nil).Once()

	product, err := f.service.Create(ctx, rootActor, services.CreateProductInput{Name: "Bondi 8", Brand: "HOKA", Price: 1})

	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Nil(t, product)
	f.sequences.AssertNotCalled(t, "Next", mock.Anything, mock.Anything)
	f.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductService_CreateRejectsArchived(t *testing.T) {
	f := newProductFixture(services.Hooks{})

	_, err := f.service.Create(ctx, rootActor, services.CreateProductInput{Name: "X", Brand: "Y", Status: models.StatusArchived})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestProductService_UpdateRenameConflict(t *testing.T) {
	f := newProductFixture(services.Hooks{})
	existing := &models.Product{ID: 2, Name: "Clifton 9", Brand: "HOKA", Status: models.StatusDraft, IsActive: true}

	f.products.On("GetByID", mock.Anything, uint64(2)).Return(existing, nil).Once()
	f.products.On("ExistsActiveNameBrand", mock.Anything, "Bondi 8", "HOKA", uint64(2)).Return(true, nil).Once()

	name := "Bondi 8"
	_, err := f.service.Update(ctx, rootActor, 2, services.UpdateProductInput{Name: &name})

	assert.ErrorIs(t, err, models.ErrConflict)
	f.products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestProductService_UpdateNotFound(t *testing.T) {
	f := newProductFixture(services.Hooks{})
	f.products.On("GetByID", mock.Anything, uint64(9)).
		Return(nil, fmt.Errorf("%w: product with id 9", models.ErrNotFound)).Once()

	_, err := f.service.Update(ctx, rootActor, 9, services.UpdateProductInput{})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestProductService_UpdateStatusTransitions(t *testing.T) {
	f := newProductFixture(services.Hooks{})
	draft := &models.Product{ID: 1, Name: "Bondi 8", Brand: "HOKA", Status: models.StatusDraft, IsActive: true}

	f.products.On("GetByID", mock.Anything, uint64(1)).Return(draft, nil).Once()
	f.products.On("Update", mock.Anything, draft).Return(nil).Once()

	published := models.StatusPublished
	price := 150.0
	product, err := f.service.Update(ctx, rootActor, 1, services.UpdateProductInput{Status: &published, Price: &price})

	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, product.Status)
	assert.NotNil(t, product.PublishedAt)
	assert.Equal(t, 150.0, product.Price)
	assert.Equal(t, "root", product.LastModifiedBy)
	f.assertExpectations(t)
}

func TestProductService_UpdateToArchivedCascades(t *testing.T) {
	f := newProductFixture(services.Hooks{})
	product := &models.Product{ID: 1, Name: "Bondi 8", Brand: "HOKA", Status: models.StatusPublished, IsActive: true}

	f.products.On("GetByID", mock.Anything, uint64(1)).Return(product, nil).Once()
	f.products.On("Update", mock.Anything, product).Return(nil).Once()
	f.variants.On("DeactivateByProduct", mock.Anything, uint64(1)).Return(int64(3), nil).Once()

	archived := models.StatusArchived
	updated, err := f.service.Update(ctx, rootActor, 1, services.UpdateProductInput{Status: &archived})

	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, models.StatusArchived, updated.Status)
	f.assertExpectations(t)
}

func TestProductService_UpdateArchivedCannotLeaveArchive(t *testing.T) {
	f := newProductFixture(services.Hooks{})
	product := &models.Product{ID: 1, Name: "Bondi 8", Brand: "HOKA", Status: models.StatusArchived}

	f.products.On("GetByID", mock.Anything, uint64(1)).Return(product, nil).Once()

	draft := models.StatusDraft
	_, err := f.service.Update(ctx, rootActor, 1, services.UpdateProductInput{Status: &draft})

	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	f.products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProductService_DeleteArchivesAndDeactivatesVariants(t *testing.T) {
	f := newProductFixture(services.Hooks{})
	product := &models.Product{ID: 4, Name: "Mach 6", Brand: "HOKA", Status: models.StatusPublished, IsActive: true}

	f.products.On("GetByID", mock.Anything, uint64(4)).Return(product, nil).Once()
	f.products.On("Update", mock.Anything, mock.MatchedBy(func(p *models.Product) bool {
		return p.ID == 4 && !p.IsActive && p.Status == models.StatusArchived
	})).Return(nil).Once()
	f.variants.On("DeactivateByProduct", mock.Anything, uint64(4)).Return(int64(2), nil).Once()

	deleted, err := f.service.Delete(ctx, rootActor, 4)

	require.NoError(t, err)
	assert.Equal(t, models.StatusArchived, deleted.Status)
	f.assertExpectations(t)
}

func TestProductService_PublishAndUnpublish(t *testing.T) {
	f := newProductFixture(services.Hooks{})
	product := &models.Product{ID: 1, Name: "Bondi 8", Brand: "HOKA", Status: models.StatusDraft, IsActive: true}

	f.products.On("GetByID", mock.Anything, uint64(1)).Return(product, nil).Twice()
	f.products.On("Update", mock.Anything, product).Return(nil).Twice()

	published, err := f.service.Publish(ctx, rootActor, 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, published.Status)
	require.NotNil(t, published.PublishedAt)
	stamp := *published.PublishedAt

	unpublished, err := f.service.Unpublish(ctx, rootActor, 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, unpublished.Status)
	require.NotNil(t, unpublished.PublishedAt)
	assert.Equal(t, stamp, *unpublished.PublishedAt)
	f.assertExpectations(t)
}

func TestProductService_PublishArchivedFails(t *testing.T) {
	f := newProductFixture(services.Hooks{})
	f.products.On("GetByID", mock.Anything, uint64(1)).
		Return(&models.Product{ID: 1, Status: models.StatusArchived}, nil).Once()

	_, err := f.service.Publish(ctx, rootActor, 1)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	f.products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProductService_PublicReadsHideDrafts(t *testing.T) {
	f := newProductFixture(services.Hooks{})
	draft := &models.Product{ID: 2, Status: models.StatusDraft, IsActive: true}
	now := time.Now()
	live := &models.Product{ID: 3, Status: models.StatusPublished, IsActive: true, PublishedAt: &now}

	f.products.On("GetByID", mock.Anything, uint64(2)).Return(draft, nil)
	f.products.On("GetByID", mock.Anything, uint64(3)).Return(live, nil)
	f.variants.On("ListByProduct", mock.Anything, uint64(3), true).Return([]models.ProductVariant{{ID: 10, ProductID: 3}}, nil).Once()
	f.variants.On("ListByProduct", mock.Anything, uint64(2), false).Return([]models.ProductVariant{{ID: 11, ProductID: 2}}, nil).Once()

	_, err := f.service.FindByID(ctx, 2)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.service.GetProductVariants(ctx, 2)
	assert.ErrorIs(t, err, models.ErrNotFound)

	adminView, err := f.service.FindByIDForAdmin(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, draft, adminView)

	variants, err := f.service.GetProductVariants(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, variants, 1)

	adminVariants, err := f.service.GetProductVariantsForAdmin(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, adminVariants, 1)
	f.assertExpectations(t)
}

func TestProductService_SearchAndBrand(t *testing.T) {
	f := newProductFixture(services.Hooks{})
	hits := []models.Product{{ID: 1, Name: "Bondi 8"}}

	f.products.On("List", mock.Anything, repositories.ProductFilter{VisibleOnly: true, Search: "bondi"}).Return(hits, nil).Once()
	f.products.On("List", mock.Anything, repositories.ProductFilter{VisibleOnly: true, Brand: "HOKA"}).Return(hits, nil).Once()
	f.products.On("List", mock.Anything, repositories.ProductFilter{VisibleOnly: true}).Return(hits, nil).Once()

	found, err := f.service.Search(ctx, "  bondi ")
	require.NoError(t, err)
	assert.Equal(t, hits, found)

	byBrand, err := f.service.FindByBrand(ctx, "HOKA")
	require.NoError(t, err)
	assert.Equal(t, hits, byBrand)

	all, err := f.service.Search(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, hits, all)
	f.assertExpectations(t)
}

func TestProductService_HooksOnWrite(t *testing.T) {
	publisher := new(MockPublisher)
	auditRepo := new(MockAuditRepository)
	f := newProductFixture(services.Hooks{
		Events: publisher,
		Audit:  services.NewAuditService(auditRepo),
	})
	product := &models.Product{ID: 1, Name: "Bondi 8", Brand: "HOKA", Status: models.StatusDraft, IsActive: true}

	f.products.On("GetByID", mock.Anything, uint64(1)).Return(product, nil).Once()
	f.products.On("Update", mock.Anything, product).Return(nil).Once()
	publisher.On("Publish", services.EventProductPublished, mock.MatchedBy(func(e services.Event) bool {
		return e.Type == services.EventProductPublished && e.Actor == "root" && e.ID != ""
	})).Return(errors.New("broker down")).Once()
	auditRepo.On("Record", mock.Anything, mock.MatchedBy(func(e *models.AuditEntry) bool {
		return e.Action == "product.publish" && e.ResourceID == 1 && e.ActorID == 1
	})).Return(nil).Once()

	// A broker failure does not fail the write.
	_, err := f.service.Publish(ctx, rootActor, 1)
	require.NoError(t, err)
	publisher.AssertExpectations(t)
	auditRepo.AssertExpectations(t)
}

func TestProductService_CachedListings(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	f := newProductFixture(services.Hooks{Cache: cache.New(client, time.Minute)})

	f.products.On("DistinctVisible", mock.Anything, "brand").Return([]string{"HOKA", "Nike"}, nil).Twice()
	product := &models.Product{ID: 1, Name: "Bondi 8", Brand: "HOKA", Status: models.StatusDraft, IsActive: true}
	f.products.On("GetByID", mock.Anything, uint64(1)).Return(product, nil).Once()
	f.products.On("Update", mock.Anything, product).Return(nil).Once()

	for i := 0; i < 3; i++ {
		brands, err := f.service.GetAllBrands(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"HOKA", "Nike"}, brands)
	}

	_, err := f.service.Publish(ctx, rootActor, 1)
	require.NoError(t, err)

	brands, err := f.service.GetAllBrands(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"HOKA", "Nike"}, brands)
	f.assertExpectations(t)
}

func TestProductService_GetProductColors(t *testing.T) {
	f := newProductFixture(services.Hooks{})
	black := &models.Color{ID: 1, Name: "Black", IsActive: true}
	white := &models.Color{ID: 2, Name: "White", IsActive: true}
	retired := &models.Color{ID: 3, Name: "Retired", IsActive: false}

	f.products.On("GetByID", mock.Anything, uint64(1)).Return(&models.Product{ID: 1, Status: models.StatusPublished, IsActive: true}, nil)
	f.variants.On("ListByProduct", mock.Anything, uint64(1), true).Return([]models.ProductVariant{
		{ID: 1, ColorID: 1, Color: black},
		{ID: 2, ColorID: 1, Color: black},
		{ID: 3, ColorID: 3, Color: retired},
		{ID: 4, ColorID: 2, Color: white},
	}, nil).Once()

	colors, err := f.service.GetProductColors(ctx, 1)
	require.NoError(t, err)
	require.Len(t, colors, 2)
	assert.Equal(t, "Black", colors[0].Name)
	assert.Equal(t, "White", colors[1].Name)
	f.assertExpectations(t)
}
