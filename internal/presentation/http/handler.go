// Package httppresentation exposes the marketplace over HTTP/JSON. Callers
// identify themselves with the X-User-ID header, resolved through the
// identity service; all domain errors map to stable error codes.
package httppresentation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	appcheckout "github.com/farmline/marketplace/internal/application/checkout"
	appescrow "github.com/farmline/marketplace/internal/application/escrow"
	"github.com/farmline/marketplace/internal/application/identity"
	appproduct "github.com/farmline/marketplace/internal/application/product"
	appreview "github.com/farmline/marketplace/internal/application/review"
	domorder "github.com/farmline/marketplace/internal/domain/order"
	domproduct "github.com/farmline/marketplace/internal/domain/product"
	domreview "github.com/farmline/marketplace/internal/domain/review"
	domuser "github.com/farmline/marketplace/internal/domain/user"
	"github.com/farmline/marketplace/internal/observability"
)

const (
	headerUserID       = "X-User-ID"
	requestTimeout     = 15 * time.Second
	componentHandler   = "http_server"
	maxRequestBodySize = 1 << 20
)

type Handler struct {
	identity *identity.Service
	products *appproduct.Service
	escrow   *appescrow.Service
	checkout *appcheckout.UseCase
	orders   *appcheckout.Queries
	reviews  *appreview.Service
	log      observability.Logger
	tel      observability.Observability
}

func NewHandler(
	identitySvc *identity.Service,
	productSvc *appproduct.Service,
	escrowSvc *appescrow.Service,
	checkoutUC *appcheckout.UseCase,
	orderQueries *appcheckout.Queries,
	reviewSvc *appreview.Service,
	tel observability.Observability,
) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Handler{
		identity: identitySvc,
		products: productSvc,
		escrow:   escrowSvc,
		checkout: checkoutUC,
		orders:   orderQueries,
		reviews:  reviewSvc,
		log:      tel.Logger().With(observability.F("component", componentHandler)),
		tel:      tel,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Timeout(requestTimeout))
	r.Use(h.observabilityMiddleware)

	r.Get("/health", h.handleHealth)
	r.Post("/users", h.handleRegisterUser)

	r.Route("/products", func(r chi.Router) {
		r.Post("/", h.handleAddProduct)
		r.Get("/", h.handleListProducts)
		r.Route("/{productID}", func(r chi.Router) {
			r.Get("/", h.handleGetProduct)
			r.Patch("/", h.handleUpdateProduct)
			r.Post("/bid", h.handlePlaceBid)
			r.Post("/bid/accept", h.handleAcceptBid)
			r.Post("/sold", h.handleMarkSold)
			r.Post("/dispute", h.handleRaiseDispute)
			r.Post("/dispute/resolve", h.handleResolveDispute)
			r.Post("/escrow/deposit", h.handleDepositEscrow)
			r.Post("/escrow/withdraw", h.handleWithdrawEscrow)
			r.Post("/escrow/release", h.handleReleaseEscrow)
			r.Post("/reviews", h.handleAddReview)
			r.Get("/reviews", h.handleListReviews)
		})
	})

	r.Post("/checkout", h.handleCheckout)
	r.Get("/orders", h.handleListOrders)
	r.Get("/orders/{orderID}", h.handleGetOrder)

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type registerUserRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type userResponse struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

func (h *Handler) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	role, err := domuser.ParseRole(req.Role)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	u, err := h.identity.Register(r.Context(), identity.RegisterInput{Name: req.Name, Role: role})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{
		ID:       u.ID,
		Name:     u.Name,
		Role:     string(u.Role),
		JoinedAt: u.JoinedAt,
	})
}

type addProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       uint64 `json:"price"`
	Stock       uint64 `json:"stock"`
}

type productResponse struct {
	ID            string    `json:"id"`
	SellerID      string    `json:"seller_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Price         uint64    `json:"price"`
	Stock         uint64    `json:"stock"`
	Rating        uint32    `json:"rating"`
	Status        string    `json:"status"`
	EscrowBalance uint64    `json:"escrow_balance"`
	Disputed      bool      `json:"disputed"`
	BuyerID       string    `json:"buyer_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toProductResponse(p *domproduct.Product) productResponse {
	return productResponse{
		ID:            p.ID,
		SellerID:      p.SellerID,
		Name:          p.Name,
		Description:   p.Description,
		Category:      string(p.Category),
		Price:         p.Price,
		Stock:         p.Stock,
		Rating:        p.Rating,
		Status:        string(p.Status),
		EscrowBalance: p.Escrow,
		Disputed:      p.Disputed,
		BuyerID:       p.BuyerID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (h *Handler) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	var req addProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	category, err := domproduct.ParseCategory(req.Category)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	p, err := h.products.AddProduct(r.Context(), actor, appproduct.AddProductInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    category,
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	var filter appproduct.Filter
	if raw := r.URL.Query().Get("category"); raw != "" {
		category, err := domproduct.ParseCategory(raw)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		filter.Category = category
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domproduct.Status(raw)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, errors.New("unknown status"))
			return
		}
		filter.Status = status
	}
	filter.SellerID = r.URL.Query().Get("seller")

	products, err := h.products.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

type updateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Price       *uint64 `json:"price"`
	Stock       *uint64 `json:"stock"`
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	var req updateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	in := appproduct.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	}
	if req.Category != nil {
		category, err := domproduct.ParseCategory(*req.Category)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		in.Category = &category
	}

	p, err := h.products.Update(r.Context(), actor, chi.URLParam(r, "productID"), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) handlePlaceBid(w http.ResponseWriter, r *http.Request) {
	h.productAction(w, r, h.products.PlaceBid)
}

func (h *Handler) handleAcceptBid(w http.ResponseWriter, r *http.Request) {
	h.productAction(w, r, h.products.AcceptBid)
}

func (h *Handler) handleMarkSold(w http.ResponseWriter, r *http.Request) {
	h.productAction(w, r, h.products.MarkSold)
}

func (h *Handler) handleRaiseDispute(w http.ResponseWriter, r *http.Request) {
	h.productAction(w, r, h.products.RaiseDispute)
}

type resolveDisputeRequest struct {
	FavorSeller bool `json:"favor_seller"`
}

func (h *Handler) handleResolveDispute(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	var req resolveDisputeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	productID := chi.URLParam(r, "productID")
	if err := h.products.ResolveDispute(r.Context(), actor, productID, req.FavorSeller); err != nil {
		writeDomainError(w, err)
		return
	}
	h.respondWithProduct(w, r, productID)
}

type escrowAmountRequest struct {
	Amount uint64 `json:"amount"`
}

type escrowBalanceResponse struct {
	ProductID string `json:"product_id"`
	Balance   uint64 `json:"balance"`
}

func (h *Handler) handleDepositEscrow(w http.ResponseWriter, r *http.Request) {
	h.escrowAmountAction(w, r, h.escrow.Deposit)
}

func (h *Handler) handleWithdrawEscrow(w http.ResponseWriter, r *http.Request) {
	h.escrowAmountAction(w, r, h.escrow.Withdraw)
}

type escrowReleaseResponse struct {
	ProductID string `json:"product_id"`
	Released  uint64 `json:"released"`
}

func (h *Handler) handleReleaseEscrow(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	productID := chi.URLParam(r, "productID")
	released, err := h.escrow.Release(r.Context(), actor, productID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, escrowReleaseResponse{ProductID: productID, Released: released})
}

type checkoutRequest struct {
	Lines []checkoutLineRequest `json:"lines"`
}

type checkoutLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  uint64 `json:"quantity"`
}

type checkoutResponse struct {
	OrderID     string `json:"order_id"`
	TotalAmount uint64 `json:"total_amount"`
	Status      string `json:"status"`
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	lines := make([]appcheckout.CartLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, appcheckout.CartLine{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	result, err := h.checkout.Execute(r.Context(), appcheckout.CheckoutInput{Actor: actor, Lines: lines})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, checkoutResponse{
		OrderID:     result.OrderID,
		TotalAmount: result.TotalAmount,
		Status:      string(result.Status),
	})
}

type orderResponse struct {
	ID          string              `json:"id"`
	BuyerID     string              `json:"buyer_id"`
	Lines       []orderLineResponse `json:"lines"`
	TotalAmount uint64              `json:"total_amount"`
	Status      string              `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
}

type orderLineResponse struct {
	ProductID string `json:"product_id"`
	Quantity  uint64 `json:"quantity"`
	UnitPrice uint64 `json:"unit_price"`
}

func toOrderResponse(o *domorder.Order) orderResponse {
	lines := make([]orderLineResponse, 0, len(o.Lines))
	for _, line := range o.Lines {
		lines = append(lines, orderLineResponse{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	return orderResponse{
		ID:          o.ID,
		BuyerID:     o.BuyerID,
		Lines:       lines,
		TotalAmount: o.TotalAmount,
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt,
	}
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	o, err := h.orders.GetOrder(r.Context(), actor, chi.URLParam(r, "orderID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	orders, err := h.orders.ListOrders(r.Context(), actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

type addReviewRequest struct {
	Rating  uint32 `json:"rating"`
	Comment string `json:"comment"`
}

type reviewResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Rating    uint32    `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func toReviewResponse(rev *domreview.Review) reviewResponse {
	return reviewResponse{
		ID:        rev.ID,
		ProductID: rev.ProductID,
		UserID:    rev.UserID,
		Rating:    rev.Rating,
		Comment:   rev.Comment,
		CreatedAt: rev.CreatedAt,
	}
}

func (h *Handler) handleAddReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	var req addReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rev, err := h.reviews.AddReview(r.Context(), actor, appreview.AddReviewInput{
		ProductID: chi.URLParam(r, "productID"),
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReviewResponse(rev))
}

func (h *Handler) handleListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListByProduct(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]reviewResponse, 0, len(reviews))
	for _, rev := range reviews {
		out = append(out, toReviewResponse(rev))
	}
	writeJSON(w, http.StatusOK, out)
}

// authenticate resolves the caller header to an Actor, writing the error
// response itself when resolution fails.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (identity.Actor, bool) {
	actor, err := h.identity.Resolve(r.Context(), r.Header.Get(headerUserID))
	if err != nil {
		writeDomainError(w, err)
		return identity.Actor{}, false
	}
	return actor, true
}

// productAction runs a (actor, productID) state transition and responds with
// the product's fresh state.
func (h *Handler) productAction(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, actor identity.Actor, productID string) error,
) {
	actor, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	productID := chi.URLParam(r, "productID")
	if err := action(r.Context(), actor, productID); err != nil {
		writeDomainError(w, err)
		return
	}
	h.respondWithProduct(w, r, productID)
}

func (h *Handler) escrowAmountAction(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, actor identity.Actor, productID string, amount uint64) (uint64, error),
) {
	actor, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	var req escrowAmountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	productID := chi.URLParam(r, "productID")
	balance, err := action(r.Context(), actor, productID, req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, escrowBalanceResponse{ProductID: productID, Balance: balance})
}

func (h *Handler) respondWithProduct(w http.ResponseWriter, r *http.Request, productID string) {
	p, err := h.products.Get(r.Context(), productID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBodySize))
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeDomainError(w http.ResponseWriter, err error) {
	code, status := classify(err)
	writeJSON(w, status, map[string]string{"error": err.Error(), "code": code})
}

// classify maps domain sentinels to a stable error code and HTTP status.
func classify(err error) (string, int) {
	switch {
	case errors.Is(err, identity.ErrUnauthenticated):
		return "unauthenticated", http.StatusUnauthorized
	case errors.Is(err, identity.ErrUnauthorized):
		return "unauthorized", http.StatusForbidden
	case errors.Is(err, domproduct.ErrNotFound),
		errors.Is(err, domorder.ErrNotFound),
		errors.Is(err, domreview.ErrNotFound),
		errors.Is(err, domuser.ErrNotFound):
		return "not_found", http.StatusNotFound
	case errors.Is(err, domproduct.ErrInsufficientStock):
		return "insufficient_stock", http.StatusConflict
	case errors.Is(err, domproduct.ErrInsufficientFunds):
		return "insufficient_funds", http.StatusConflict
	case errors.Is(err, domproduct.ErrDisputeUnresolved):
		return "dispute_unresolved", http.StatusConflict
	case errors.Is(err, domproduct.ErrAlreadyBid),
		errors.Is(err, domproduct.ErrDisputeOpen):
		return "conflict", http.StatusConflict
	case errors.Is(err, domproduct.ErrNoBid),
		errors.Is(err, domproduct.ErrNotAccepted),
		errors.Is(err, domproduct.ErrNoDispute),
		errors.Is(err, domproduct.ErrNotSold):
		return "invalid_state", http.StatusConflict
	case errors.Is(err, domproduct.ErrInvalidCategory),
		errors.Is(err, domproduct.ErrNameRequired),
		errors.Is(err, domproduct.ErrSellerRequired),
		errors.Is(err, domproduct.ErrBuyerRequired),
		errors.Is(err, domproduct.ErrInvalidAmount),
		errors.Is(err, domproduct.ErrInvalidQuantity),
		errors.Is(err, domproduct.ErrStockOverflow),
		errors.Is(err, domproduct.ErrBalanceOverflow),
		errors.Is(err, domorder.ErrEmptyCart),
		errors.Is(err, domorder.ErrInvalidQuantity),
		errors.Is(err, domorder.ErrTotalOverflow),
		errors.Is(err, domreview.ErrInvalidRating),
		errors.Is(err, domuser.ErrInvalidRole),
		errors.Is(err, domuser.ErrNameRequired):
		return "invalid_argument", http.StatusBadRequest
	default:
		return "internal", http.StatusInternalServerError
	}
}
