package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/driftwear-shop/driftwear/internal/config"
	"github.com/driftwear-shop/driftwear/internal/constants"
	"github.com/driftwear-shop/driftwear/internal/http/response"
	"github.com/driftwear-shop/driftwear/internal/models"
	"github.com/driftwear-shop/driftwear/internal/provider"
	"github.com/driftwear-shop/driftwear/internal/repository"
	"github.com/driftwear-shop/driftwear/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestRouter(t *testing.T) (*gin.Engine, *provider.Container) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Cart{}, &models.Product{}, &models.NewsletterSubscriber{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		Cart: config.CartConfig{
			CurrencyCode:   "USD",
			CurrencySymbol: "$",
		},
		Checkout: config.CheckoutConfig{
			SecretKey:     "sk_test_router",
			WebhookSecret: "whsec_router",
			SuccessURL:    "https://shop.example.com/checkout/success",
			CancelURL:     "https://shop.example.com/cart",
		},
		Media: config.MediaConfig{
			SigningSecret:    "media-signing-secret-for-tests",
			JWTSecret:        "media-jwt-secret-for-tests",
			RequiredRole:     "fitting",
			BaseURL:          "https://shop.example.com",
			AssetDir:         t.TempDir(),
			AllowedAssetType: "glb",
		},
	}

	c := &provider.Container{Config: cfg}
	c.CartRepo = repository.NewCartRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.NewsletterRepo = repository.NewNewsletterRepository(db)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo, cfg.Cart.Discount)
	c.CartViewBuilder = service.NewCartViewBuilder(c.CartService, cfg.Cart)
	c.CheckoutService = service.NewCheckoutService(c.CartRepo, c.CartService, cfg.Checkout, nil)
	c.ProductService = service.NewProductService(c.ProductRepo, cfg.Cart)
	c.NewsletterService = service.NewNewsletterService(c.NewsletterRepo, cfg.Newsletter, nil)
	c.MediaService = service.NewMediaService(c.ProductRepo, cfg.Media)

	return SetupRouter(cfg, c), c
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload failed: %v", err)
		}
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}
	request := httptest.NewRequest(method, path, body)
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set(constants.CartTokenHeader, token)
	}
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, request)
	return recorder
}

func envelopeData(t *testing.T, recorder *httptest.ResponseRecorder) (response.Response, map[string]interface{}) {
	t.Helper()

	var envelope response.Response
	if err := json.Unmarshal(recorder.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope failed: %v body=%s", err, recorder.Body.String())
	}
	data, _ := envelope.Data.(map[string]interface{})
	return envelope, data
}

func TestGetCartMintsToken(t *testing.T) {
	engine, _ := newTestRouter(t)

	recorder := doJSON(t, engine, http.MethodGet, "/api/v1/cart", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", recorder.Code)
	}
	if recorder.Header().Get(constants.CartTokenHeader) == "" {
		t.Fatalf("expected cart token minted in response header")
	}
	envelope, data := envelopeData(t, recorder)
	if envelope.StatusCode != 0 {
		t.Fatalf("unexpected envelope code %d", envelope.StatusCode)
	}
	if data["empty"] != true {
		t.Fatalf("expected empty cart view, got %v", data)
	}
}

func TestCartItemLifecycleOverHTTP(t *testing.T) {
	engine, _ := newTestRouter(t)
	token := "router-cart-token"

	recorder := doJSON(t, engine, http.MethodPost, "/api/v1/cart/items?surfaces=drawer", token, map[string]interface{}{
		"product_id": "tee",
		"title":      "Heavyweight Tee",
		"variant":    "M",
		"price":      "24.99",
	})
	envelope, data := envelopeData(t, recorder)
	if envelope.StatusCode != 0 {
		t.Fatalf("add failed: %s", recorder.Body.String())
	}
	if data["surface"] != "drawer" {
		t.Fatalf("expected drawer surface, got %v", data["surface"])
	}
	if data["badge_count"] != float64(1) {
		t.Fatalf("expected badge 1, got %v", data["badge_count"])
	}
	if data["subtotal"] != "$24.99" {
		t.Fatalf("unexpected subtotal %v", data["subtotal"])
	}

	recorder = doJSON(t, engine, http.MethodPost, "/api/v1/cart/items/tee__M/increment", token, nil)
	_, data = envelopeData(t, recorder)
	if data["badge_count"] != float64(2) {
		t.Fatalf("expected badge 2 after increment, got %v", data["badge_count"])
	}

	recorder = doJSON(t, engine, http.MethodPost, "/api/v1/cart/items/tee__M/decrement", token, nil)
	_, data = envelopeData(t, recorder)
	if data["badge_count"] != float64(1) {
		t.Fatalf("expected badge 1 after decrement, got %v", data["badge_count"])
	}

	recorder = doJSON(t, engine, http.MethodDelete, "/api/v1/cart/items/tee__M", token, nil)
	_, data = envelopeData(t, recorder)
	if data["empty"] != true {
		t.Fatalf("expected empty cart after removal, got %v", data)
	}
}

func TestAdjustUnknownItemReturnsNotFoundCode(t *testing.T) {
	engine, _ := newTestRouter(t)

	recorder := doJSON(t, engine, http.MethodPost, "/api/v1/cart/items/ghost/increment", "router-ghost-token", nil)
	envelope, _ := envelopeData(t, recorder)
	if envelope.StatusCode != response.CodeNotFound {
		t.Fatalf("expected not found code, got %d", envelope.StatusCode)
	}
}

func TestCheckoutWithoutPayableItemsReturnsBadRequest(t *testing.T) {
	engine, _ := newTestRouter(t)
	token := "router-checkout-token"

	recorder := doJSON(t, engine, http.MethodPost, "/api/v1/cart/items", token, map[string]interface{}{
		"product_id": "sticker",
		"price":      "2.00",
	})
	if envelope, _ := envelopeData(t, recorder); envelope.StatusCode != 0 {
		t.Fatalf("add failed: %s", recorder.Body.String())
	}

	recorder = doJSON(t, engine, http.MethodPost, "/api/v1/cart/checkout", token, nil)
	envelope, _ := envelopeData(t, recorder)
	if envelope.StatusCode != response.CodeBadRequest {
		t.Fatalf("expected bad request code, got %d", envelope.StatusCode)
	}
}

func TestCheckoutWebhookRejectsBadSignature(t *testing.T) {
	engine, _ := newTestRouter(t)

	request := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/webhook",
		bytes.NewReader([]byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_x"}}}`)))
	request.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad signature, got %d", recorder.Code)
	}
}

func TestNewsletterSubscribeValidation(t *testing.T) {
	engine, _ := newTestRouter(t)

	recorder := doJSON(t, engine, http.MethodPost, "/api/v1/newsletter/subscribe", "", map[string]string{"email": "not-an-email"})
	envelope, _ := envelopeData(t, recorder)
	if envelope.StatusCode != response.CodeBadRequest {
		t.Fatalf("expected bad request for invalid email, got %d", envelope.StatusCode)
	}

	recorder = doJSON(t, engine, http.MethodPost, "/api/v1/newsletter/subscribe", "", map[string]string{"email": "router.fan@example.com"})
	envelope, _ = envelopeData(t, recorder)
	if envelope.StatusCode != 0 {
		t.Fatalf("expected success, got %s", recorder.Body.String())
	}
}

func TestProductEndpoints(t *testing.T) {
	engine, c := newTestRouter(t)
	if err := c.ProductRepo.Create(&models.Product{
		Slug:          "router-tee",
		Title:         "Router Tee",
		PriceAmount:   models.NewMoneyFromMinorUnits(2499),
		PriceCurrency: "USD",
		StripePriceID: "price_router_tee",
		IsActive:      true,
	}); err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	recorder := doJSON(t, engine, http.MethodGet, "/api/v1/products?page=1&page_size=10", "", nil)
	var page response.PageResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page failed: %v", err)
	}
	if page.StatusCode != 0 || page.Pagination.Total < 1 {
		t.Fatalf("unexpected product list response: %s", recorder.Body.String())
	}

	recorder = doJSON(t, engine, http.MethodGet, "/api/v1/products/router-tee", "", nil)
	envelope, data := envelopeData(t, recorder)
	if envelope.StatusCode != 0 {
		t.Fatalf("detail failed: %s", recorder.Body.String())
	}
	if data["price"] != "$24.99" {
		t.Fatalf("unexpected detail price %v", data["price"])
	}

	recorder = doJSON(t, engine, http.MethodGet, "/api/v1/products/missing-slug", "", nil)
	envelope, _ = envelopeData(t, recorder)
	if envelope.StatusCode != response.CodeNotFound {
		t.Fatalf("expected not found code, got %d", envelope.StatusCode)
	}
}

func TestSignMediaURLRequiresToken(t *testing.T) {
	engine, _ := newTestRouter(t)

	recorder := doJSON(t, engine, http.MethodPost, "/api/v1/media/asset-x/sign", "", nil)
	envelope, _ := envelopeData(t, recorder)
	if envelope.StatusCode != response.CodeUnauthorized {
		t.Fatalf("expected unauthorized code, got %d", envelope.StatusCode)
	}
}

func TestServeMediaRejectsForgedSignature(t *testing.T) {
	engine, _ := newTestRouter(t)

	request := httptest.NewRequest(http.MethodGet, "/api/v1/media/asset-x?type=glb&expires=99999999999&signature=deadbeef", nil)
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for forged signature, got %d", recorder.Code)
	}
}
