package trade

import (
	"context"
	"errors"
	"time"

	ledgerapp "github.com/erp/accounting/internal/application/ledger"
	"github.com/erp/accounting/internal/application/writeset"
	"github.com/erp/accounting/internal/domain/finance"
	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/pos"
	"github.com/erp/accounting/internal/domain/posting"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/domain/trade"
	"github.com/erp/accounting/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoicingService turns confirmed orders into invoices and bills and takes
// down payments. Each call commits one write-set: the document, its journal
// entry and the order transition land together or not at all.
type InvoicingService struct {
	scope  writeset.TransactionScope
	poster *ledgerapp.Poster
	logger *zap.Logger
}

// NewInvoicingService creates a new InvoicingService
func NewInvoicingService(scope writeset.TransactionScope, poster *ledgerapp.Poster, logger *zap.Logger) *InvoicingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoicingService{scope: scope, poster: poster, logger: logger}
}

// PostInvoiceGeneration issues the sales invoice of a confirmed sales order.
// The invoice bills the order total net of collected down payments.
func (s *InvoicingService) PostInvoiceGeneration(ctx context.Context, companyID, orderID uuid.UUID, req GenerateDocumentRequest) (*DocumentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoicing", "post_invoice_generation")
	defer span.End()

	result, err := s.generate(ctx, companyID, orderID, issueDate(req), finance.KindInvoice,
		func(o *trade.Order, doc *finance.Document) (posting.Rule, error) {
			return o.SalesInvoiceEvent(doc.ID, doc.Number, doc.IssueDate)
		})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return result, nil
}

// PostBillGeneration issues the supplier bill of a confirmed purchase order
func (s *InvoicingService) PostBillGeneration(ctx context.Context, companyID, orderID uuid.UUID, req GenerateDocumentRequest) (*DocumentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoicing", "post_bill_generation")
	defer span.End()

	result, err := s.generate(ctx, companyID, orderID, issueDate(req), finance.KindBill,
		func(o *trade.Order, doc *finance.Document) (posting.Rule, error) {
			return o.PurchaseBillEvent(doc.ID, doc.Number, doc.IssueDate)
		})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return result, nil
}

type ruleFor func(o *trade.Order, doc *finance.Document) (posting.Rule, error)

func (s *InvoicingService) generate(ctx context.Context, companyID, orderID uuid.UUID, date time.Time, kind finance.DocumentKind, build ruleFor) (*DocumentResult, error) {
	var (
		order *trade.Order
		doc   *finance.Document
		entry *ledger.JournalEntry
	)
	err := s.scope.Execute(ctx, func(repos writeset.Repositories) error {
		var err error
		order, err = repos.Orders().FindByID(ctx, companyID, orderID)
		if err != nil {
			return err
		}
		if existing, err := repos.Documents().FindByOrder(ctx, companyID, orderID, kind); err == nil {
			return shared.NewConflictError("ALREADY_INVOICED", "Order "+order.OrderNumber+" already has "+kind.String()+" "+existing.Number)
		} else if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		number, err := repos.Documents().NextNumber(ctx, companyID, kind, date)
		if err != nil {
			return writeset.Step("reserve document number", err)
		}
		amounts := finance.DocumentAmounts{
			Subtotal:           order.Subtotal,
			DiscountAmount:     order.DiscountAmount,
			TaxAmount:          order.TaxAmount,
			DownPaymentApplied: order.DownPaymentPaid,
			TotalAmount:        order.InvoiceTotal(),
		}
		doc, err = finance.NewDocument(companyID, kind, number, order.PartyID, order.PartyName, date, order.DueDate(date), amounts)
		if err != nil {
			return err
		}
		oid := order.ID
		doc.OrderID = &oid

		rule, err := build(order, doc)
		if err != nil {
			return err
		}
		entry, err = s.poster.Post(ctx, repos, companyID, rule)
		if err != nil && !posting.IsNothingToPost(err) {
			return err
		}
		var entryID *uuid.UUID
		if entry != nil {
			id := entry.ID
			entryID = &id
		}
		if err := doc.Issue(entryID); err != nil {
			return err
		}
		if err := writeset.Step("save document", repos.Documents().Save(ctx, doc)); err != nil {
			return err
		}
		if err := order.MarkInvoiced(doc.ID); err != nil {
			return err
		}
		if doc.Status == finance.StatusPaid {
			if err := order.MarkPaid(); err != nil {
				return err
			}
		}
		if err := writeset.Step("update order", repos.Orders().SaveWithLock(ctx, order)); err != nil {
			return err
		}
		return writeset.RecordEvents(ctx, repos, doc, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document generated",
		zap.String("company_id", companyID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("document_number", doc.Number),
		zap.String("kind", kind.String()),
		zap.String("total", doc.TotalAmount.StringFixed(ledger.AmountPlaces)),
	)
	result := &DocumentResult{
		OrderID:           order.ID,
		DocumentID:        doc.ID,
		DocumentNumber:    doc.Number,
		Kind:              kind.String(),
		Status:            string(doc.Status),
		TotalAmount:       doc.TotalAmount,
		OutstandingAmount: doc.OutstandingAmount,
		JournalEntryID:    doc.JournalEntryID,
	}
	if entry != nil {
		result.EntryNumber = entry.EntryNumber
	}
	return result, nil
}

// RecordDeposit books a down payment against a sales order. A cash deposit
// also lands in the company's open cash session, if there is one.
func (s *InvoicingService) RecordDeposit(ctx context.Context, companyID, orderID uuid.UUID, req RecordDepositRequest) (*DepositResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoicing", "record_deposit")
	defer span.End()

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}
	depositID := uuid.New()
	var (
		order    *trade.Order
		entry    *ledger.JournalEntry
		movement *pos.CashMovement
	)
	err := s.scope.Execute(ctx, func(repos writeset.Repositories) error {
		var err error
		order, err = repos.Orders().FindByID(ctx, companyID, orderID)
		if err != nil {
			return err
		}
		method, err := repos.PaymentMethods().FindByID(ctx, companyID, req.PaymentMethodID)
		if err != nil {
			return err
		}
		if !method.IsActive {
			return shared.NewValidationError("INVALID_PAYMENT_METHOD", "Payment method "+method.Name+" is inactive")
		}
		if err := order.RecordDownPayment(req.Amount); err != nil {
			return err
		}

		entry, err = s.poster.Post(ctx, repos, companyID, posting.Deposit{
			DepositID:       depositID,
			OrderNumber:     order.OrderNumber,
			PaymentMethodID: method.ID,
			Date:            date,
			Amount:          req.Amount,
		})
		if err != nil {
			return err
		}
		if err := writeset.Step("update order", repos.Orders().SaveWithLock(ctx, order)); err != nil {
			return err
		}

		if method.IsCash {
			session, err := repos.CashSessions().FindOpen(ctx, companyID)
			switch {
			case err == nil:
				m, err := session.NewMovement(pos.MovementDeposit, req.Amount, string(ledger.RefDeposit), &depositID,
					"Down payment "+order.OrderNumber)
				if err != nil {
					return err
				}
				if err := writeset.Step("append cash movement", repos.CashMovements().Append(ctx, m)); err != nil {
					return err
				}
				movement = &m
			case errors.Is(err, shared.ErrNotFound):
				s.logger.Debug("no open cash session for deposit", zap.String("order_number", order.OrderNumber))
			default:
				return err
			}
		}
		return writeset.RecordEvents(ctx, repos, order)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &DepositResult{
		DepositID:       depositID,
		OrderID:         order.ID,
		Amount:          req.Amount,
		DownPaymentPaid: order.DownPaymentPaid,
		JournalEntryID:  entry.ID,
		EntryNumber:     entry.EntryNumber,
	}
	if movement != nil {
		id := movement.ID
		result.CashMovementID = &id
	}
	return result, nil
}

func issueDate(req GenerateDocumentRequest) time.Time {
	if req.IssueDate != nil {
		return *req.IssueDate
	}
	return time.Now()
}
