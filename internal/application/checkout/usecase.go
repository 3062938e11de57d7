// Package checkout implements the multi-item checkout transaction: validate
// the whole cart against current stock, snapshot prices, decrement stock,
// and persist a pending order. The backing store has no multi-key
// transactions, so the engine validates every line before issuing any write;
// a failed cart leaves no visible mutation.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/farmline/marketplace/internal/application"
	"github.com/farmline/marketplace/internal/application/identity"
	domorder "github.com/farmline/marketplace/internal/domain/order"
	"github.com/farmline/marketplace/internal/domain/outbox"
	domproduct "github.com/farmline/marketplace/internal/domain/product"
	"github.com/farmline/marketplace/internal/domain/user"
	"github.com/farmline/marketplace/internal/observability"
	"github.com/farmline/marketplace/internal/observability/logctx"
	"github.com/farmline/marketplace/internal/pkg/checked"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const useCaseCheckout = "checkout"

// CartLine is one requested purchase. Lines referencing the same product are
// aggregated before validation so the stock check sees the cumulative
// quantity.
type CartLine struct {
	ProductID string
	Quantity  uint64
}

type CheckoutInput struct {
	Actor identity.Actor
	Lines []CartLine
}

type CheckoutResult struct {
	OrderID     string
	TotalAmount uint64
	Status      domorder.Status
}

// UseCase executes checkout with observability hooks.
type UseCase struct {
	products  domproduct.Repository
	orders    domorder.Repository
	idGen     application.IDGenerator
	publisher outbox.Publisher
	tel       observability.Observability

	log          observability.Logger
	reqCounter   observability.Counter
	durHistogram observability.Histogram
	cartSize     observability.Histogram
}

func NewUseCase(
	products domproduct.Repository,
	orders domorder.Repository,
	idGen application.IDGenerator,
	publisher outbox.Publisher,
	tel observability.Observability,
) *UseCase {
	if tel == nil {
		tel = observability.Nop()
	}
	return &UseCase{
		products:     products,
		orders:       orders,
		idGen:        idGen,
		publisher:    publisher,
		tel:          tel,
		log:          tel.Logger().With(observability.F("component", "checkout")),
		reqCounter:   tel.Metrics().Counter(observability.MUsecaseRequests),
		durHistogram: tel.Metrics().Histogram(observability.MUsecaseDuration),
		cartSize:     tel.Metrics().Histogram(observability.MCheckoutCartSize),
	}
}

// Execute runs the checkout flow.
func (uc *UseCase) Execute(ctx context.Context, cmd CheckoutInput) (_ *CheckoutResult, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(observability.F("use_case", useCaseCheckout))

	ctx, span := uc.tel.Tracer().Start(ctx, "UC.Checkout",
		attribute.String("use_case", useCaseCheckout),
		attribute.String("order.buyer_id", cmd.Actor.UserID),
		attribute.Int("order.cart_lines", len(cmd.Lines)),
	)
	start := time.Now()
	outcome := "success"

	defer func() {
		lat := time.Since(start).Seconds()

		if span != nil {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else {
				span.SetStatus(codes.Ok, "OK")
			}
			span.End()
		}

		uc.reqCounter.Add(1,
			observability.L("use_case", useCaseCheckout),
			observability.L("outcome", outcome),
		)
		uc.durHistogram.Observe(lat, observability.L("use_case", useCaseCheckout))

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("latency_seconds", lat),
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	if cmd.Actor.Role != user.RoleConsumer {
		outcome = "error"
		return nil, identity.ErrUnauthorized
	}
	if len(cmd.Lines) == 0 {
		outcome = "error"
		return nil, domorder.ErrEmptyCart
	}

	quantities, productOrder, err := aggregateLines(cmd.Lines)
	if err != nil {
		outcome = "error"
		return nil, err
	}
	uc.cartSize.Observe(float64(len(productOrder)))

	// Validation pass: no writes until the whole cart checks out.
	lines := make([]domorder.Line, 0, len(productOrder))
	products := make([]*domproduct.Product, 0, len(productOrder))
	var total uint64
	for _, productID := range productOrder {
		quantity := quantities[productID]

		p, ferr := uc.products.FindByID(ctx, productID)
		if errors.Is(ferr, domproduct.ErrNotFound) {
			outcome = "error"
			return nil, fmt.Errorf("%w: %s", domproduct.ErrNotFound, productID)
		}
		if ferr != nil {
			outcome = "error"
			return nil, fmt.Errorf("checkout: load product %s: %w", productID, ferr)
		}

		if p.Stock < quantity {
			outcome = "error"
			return nil, fmt.Errorf("%w: %s", domproduct.ErrInsufficientStock, productID)
		}
		lineTotal, ok := checked.Mul(p.Price, quantity)
		if !ok {
			outcome = "error"
			return nil, domorder.ErrTotalOverflow
		}
		total, ok = checked.Add(total, lineTotal)
		if !ok {
			outcome = "error"
			return nil, domorder.ErrTotalOverflow
		}

		lines = append(lines, domorder.Line{
			ProductID: productID,
			Quantity:  quantity,
			UnitPrice: p.Price,
		})
		products = append(products, p)
	}

	// Apply pass: the host serializes mutating operations, so these writes
	// cannot interleave with another checkout's validation.
	for i, p := range products {
		if derr := p.DeductStock(lines[i].Quantity); derr != nil {
			outcome = "error"
			return nil, fmt.Errorf("checkout: deduct stock %s: %w", p.ID, derr)
		}
		if serr := uc.products.Save(ctx, p); serr != nil {
			outcome = "error"
			logger.Error("stock_write_failed",
				observability.F("product_id", p.ID),
				observability.F("error", serr),
			)
			return nil, fmt.Errorf("checkout: persist product %s: %w", p.ID, serr)
		}
	}

	entity, err := domorder.New(uc.idGen.NewID(), cmd.Actor.UserID, lines, total)
	if err != nil {
		outcome = "error"
		return nil, fmt.Errorf("checkout: construct order: %w", err)
	}
	if err := uc.orders.Save(ctx, entity); err != nil {
		outcome = "error"
		logger.Error("order_save_failed",
			observability.F("order_id", entity.ID),
			observability.F("error", err),
		)
		return nil, fmt.Errorf("checkout: persist order: %w", err)
	}

	if uc.publisher != nil {
		if perr := uc.publisher.Publish(ctx, domorder.NewCreatedEvent(entity)); perr != nil {
			uc.tel.Metrics().Counter(observability.MEventPublishFailed).Add(1,
				observability.L("event", domorder.CreatedEvent{}.EventName()),
			)
			logger.Warn("event_publish_failed",
				observability.F("event", domorder.CreatedEvent{}.EventName()),
				observability.F("error", perr),
			)
		}
	}

	span.SetAttributes(
		attribute.String("order.id", entity.ID),
		attribute.Int64("order.total_amount", int64(entity.TotalAmount)),
	)
	span.AddEvent("order.created", trace.WithAttributes(attribute.String("order.id", entity.ID)))

	return &CheckoutResult{
		OrderID:     entity.ID,
		TotalAmount: entity.TotalAmount,
		Status:      entity.Status,
	}, nil
}

// aggregateLines folds duplicate product ids into one cumulative quantity,
// preserving first-seen order.
func aggregateLines(lines []CartLine) (map[string]uint64, []string, error) {
	quantities := make(map[string]uint64, len(lines))
	productOrder := make([]string, 0, len(lines))
	for _, line := range lines {
		if line.ProductID == "" {
			return nil, nil, domproduct.ErrNotFound
		}
		if line.Quantity == 0 {
			return nil, nil, domorder.ErrInvalidQuantity
		}
		if _, seen := quantities[line.ProductID]; !seen {
			productOrder = append(productOrder, line.ProductID)
		}
		sum, ok := checked.Add(quantities[line.ProductID], line.Quantity)
		if !ok {
			return nil, nil, domorder.ErrTotalOverflow
		}
		quantities[line.ProductID] = sum
	}
	return quantities, productOrder, nil
}
