package notification

import (
	"context"

	"github.com/epharmacy/backend/internal/domain/identity"
	domain "github.com/epharmacy/backend/internal/domain/notification"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service handles the customer-facing notification inbox
type Service struct {
	notificationRepo domain.Repository
	customerRepo     identity.CustomerRepository
	logger           *zap.Logger
}

// NewService creates a new notification service
func NewService(
	notificationRepo domain.Repository,
	customerRepo identity.CustomerRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		notificationRepo: notificationRepo,
		customerRepo:     customerRepo,
		logger:           logger,
	}
}

// ListOwn lists the customer's notifications, newest first
func (s *Service) ListOwn(ctx context.Context, customerID uuid.UUID, filter *ListFilter) (*shared.Paginated[Response], error) {
	domainFilter := buildFilter(filter)
	notifications, total, err := s.notificationRepo.FindByCustomer(ctx, customerID, filter.UnreadOnly, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToResponses(notifications), total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// UnreadCount reports how many notifications the customer has not seen
func (s *Service) UnreadCount(ctx context.Context, customerID uuid.UUID) (*UnreadCountResponse, error) {
	count, err := s.notificationRepo.CountUnread(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return &UnreadCountResponse{Count: count}, nil
}

// MarkRead flags one notification as seen
func (s *Service) MarkRead(ctx context.Context, customerID, notificationID uuid.UUID) (*Response, error) {
	n, err := s.notificationRepo.FindByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.CustomerID != customerID {
		return nil, shared.ErrForbidden
	}

	if !n.IsRead {
		n.MarkRead()
		if err := s.notificationRepo.Save(ctx, n); err != nil {
			return nil, err
		}
	}

	resp := ToResponse(n)
	return &resp, nil
}

// MarkAllRead flags every unread notification of the customer as seen
func (s *Service) MarkAllRead(ctx context.Context, customerID uuid.UUID) error {
	return s.notificationRepo.MarkAllRead(ctx, customerID)
}

// Broadcast sends an announcement to every active customer account
func (s *Service) Broadcast(ctx context.Context, req *BroadcastRequest) (int, error) {
	customers, err := s.customerRepo.FindActiveByRole(ctx, identity.RoleCustomer)
	if err != nil {
		return 0, err
	}

	notifications := make([]*domain.Notification, 0, len(customers))
	for i := range customers {
		n, err := domain.NewNotification(customers[i].ID, domain.Type(req.Type), req.Title, req.Message, nil)
		if err != nil {
			return 0, err
		}
		notifications = append(notifications, n)
	}
	if len(notifications) == 0 {
		return 0, nil
	}

	if err := s.notificationRepo.SaveAll(ctx, notifications); err != nil {
		return 0, err
	}

	s.logger.Info("broadcast sent",
		zap.String("type", req.Type),
		zap.String("title", req.Title),
		zap.Int("recipients", len(notifications)))

	return len(notifications), nil
}
