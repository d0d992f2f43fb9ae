package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saeid-a/TherapyAppBack/internal/models"
	"github.com/saeid-a/TherapyAppBack/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrForbidden              = errors.New("forbidden")
	ErrConflict               = errors.New("conflict")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInvalidInput           = errors.New("invalid input")
	ErrScheduleNotFound       = errors.New("schedule not found")
	ErrBookingNotFound        = errors.New("booking not found")
)

type userReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error)
}

// BookingService owns the booking lifecycle and its side effects on the
// schedule's booked flag. Every mutation runs in one transaction with the
// schedule row locked, so the flag and the booking statuses commit together.
type BookingService struct {
	db           *pgxpool.Pool
	bookingRepo  *repository.BookingRepository
	scheduleRepo *repository.ScheduleRepository
	userRepo     userReader
	logger       *zap.Logger
}

func NewBookingService(
	db *pgxpool.Pool,
	bookingRepo *repository.BookingRepository,
	scheduleRepo *repository.ScheduleRepository,
	userRepo userReader,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		db:           db,
		bookingRepo:  bookingRepo,
		scheduleRepo: scheduleRepo,
		userRepo:     userRepo,
		logger:       logger,
	}
}

func (s *BookingService) Create(
	ctx context.Context,
	actor models.Actor,
	scheduleID uuid.UUID,
) (*models.BookingDetail, error) {
	if actor.Role != models.RoleClient {
		return nil, ErrForbidden
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txScheduleRepo := repository.NewScheduleRepository(tx)
	txBookingRepo := repository.NewBookingRepository(tx)

	schedule, err := txScheduleRepo.GetByIDForUpdate(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	if schedule.IsBooked {
		return nil, ErrConflict
	}

	booking, err := txBookingRepo.Create(ctx, actor.ID, scheduleID)
	if err != nil {
		return nil, err
	}
	if _, err := txScheduleRepo.SyncBookedFlag(ctx, scheduleID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("client_id", actor.ID.String()),
		zap.String("schedule_id", scheduleID.String()),
	)

	return s.buildDetail(ctx, booking)
}

func (s *BookingService) List(ctx context.Context, actor models.Actor) ([]models.BookingDetail, error) {
	var bookings []models.Booking
	var err error

	switch actor.Role {
	case models.RoleClient:
		bookings, err = s.bookingRepo.ListByClient(ctx, actor.ID)
	case models.RolePsychologist:
		bookings, err = s.bookingRepo.ListByPsychologist(ctx, actor.ID)
	default:
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}

	clientIDs := make([]uuid.UUID, 0, len(bookings))
	scheduleIDs := make([]uuid.UUID, 0, len(bookings))
	for _, booking := range bookings {
		clientIDs = append(clientIDs, booking.ClientID)
		scheduleIDs = append(scheduleIDs, booking.ScheduleID)
	}

	clients, err := s.userRepo.ListByIDs(ctx, clientIDs)
	if err != nil {
		return nil, err
	}
	schedules, err := s.scheduleRepo.ListByIDs(ctx, scheduleIDs)
	if err != nil {
		return nil, err
	}

	details := make([]models.BookingDetail, 0, len(bookings))
	for _, booking := range bookings {
		detail := models.BookingDetail{Booking: booking}
		if client, ok := clients[booking.ClientID]; ok {
			clientCopy := client
			detail.Client = &clientCopy
		}
		if schedule, ok := schedules[booking.ScheduleID]; ok {
			scheduleCopy := schedule
			detail.Schedule = &scheduleCopy
		}
		details = append(details, detail)
	}

	return details, nil
}

func (s *BookingService) Get(
	ctx context.Context,
	actor models.Actor,
	bookingID uuid.UUID,
) (*models.BookingDetail, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	schedule, err := s.scheduleRepo.GetByID(ctx, booking.ScheduleID)
	if err != nil {
		return nil, err
	}
	if !ownsBooking(actor, booking, schedule.PsychologistID) {
		return nil, ErrForbidden
	}

	return s.buildDetail(ctx, booking)
}

func (s *BookingService) UpdateStatus(
	ctx context.Context,
	actor models.Actor,
	bookingID uuid.UUID,
	requestedStatus string,
) (*models.BookingDetail, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txBookingRepo := repository.NewBookingRepository(tx)
	txScheduleRepo := repository.NewScheduleRepository(tx)

	booking, err := txBookingRepo.GetByIDForUpdate(ctx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	schedule, err := txScheduleRepo.GetByIDForUpdate(ctx, booking.ScheduleID)
	if err != nil {
		return nil, err
	}

	nextStatus, err := parseBookingStatus(requestedStatus)
	if err != nil {
		return nil, err
	}
	if err := validateStatusTransition(actor, booking, schedule.PsychologistID, nextStatus); err != nil {
		return nil, err
	}

	updated, err := txBookingRepo.UpdateStatus(ctx, bookingID, nextStatus)
	if err != nil {
		return nil, err
	}
	if _, err := txScheduleRepo.SyncBookedFlag(ctx, schedule.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("booking status updated",
		zap.String("booking_id", bookingID.String()),
		zap.String("from", string(booking.Status)),
		zap.String("to", string(updated.Status)),
		zap.String("actor_role", string(actor.Role)),
	)

	return s.buildDetail(ctx, updated)
}

func (s *BookingService) Delete(
	ctx context.Context,
	actor models.Actor,
	bookingID uuid.UUID,
) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txBookingRepo := repository.NewBookingRepository(tx)
	txScheduleRepo := repository.NewScheduleRepository(tx)

	booking, err := txBookingRepo.GetByIDForUpdate(ctx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrBookingNotFound
		}
		return err
	}
	schedule, err := txScheduleRepo.GetByIDForUpdate(ctx, booking.ScheduleID)
	if err != nil {
		return err
	}
	if !ownsBooking(actor, booking, schedule.PsychologistID) {
		return ErrForbidden
	}

	if err := txBookingRepo.Delete(ctx, bookingID); err != nil {
		return err
	}
	if _, err := txScheduleRepo.SyncBookedFlag(ctx, schedule.ID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.logger.Info("booking deleted",
		zap.String("booking_id", bookingID.String()),
		zap.String("schedule_id", schedule.ID.String()),
		zap.String("actor_role", string(actor.Role)),
	)
	return nil
}

func (s *BookingService) buildDetail(
	ctx context.Context,
	booking *models.Booking,
) (*models.BookingDetail, error) {
	detail := &models.BookingDetail{Booking: *booking}

	client, err := s.userRepo.GetByID(ctx, booking.ClientID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err == nil {
		detail.Client = client
	}

	schedule, err := s.scheduleRepo.GetByID(ctx, booking.ScheduleID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err == nil {
		detail.Schedule = schedule
	}

	return detail, nil
}

func ownsBooking(actor models.Actor, booking *models.Booking, psychologistID uuid.UUID) bool {
	switch actor.Role {
	case models.RoleClient:
		return booking.ClientID == actor.ID
	case models.RolePsychologist:
		return psychologistID == actor.ID
	default:
		return false
	}
}

func parseBookingStatus(raw string) (models.BookingStatus, error) {
	switch models.BookingStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case models.BookingPending:
		return models.BookingPending, nil
	case models.BookingConfirmed:
		return models.BookingConfirmed, nil
	case models.BookingRejected:
		return models.BookingRejected, nil
	default:
		return "", ErrInvalidStatus
	}
}

// validateStatusTransition encodes the role-gated state machine. Clients may
// only cancel their own pending booking (cancellation reuses the rejected
// status); psychologists may move bookings on their schedules between
// pending, confirmed and rejected, except that confirmed never returns to
// pending and rejected is terminal.
func validateStatusTransition(
	actor models.Actor,
	booking *models.Booking,
	psychologistID uuid.UUID,
	nextStatus models.BookingStatus,
) error {
	switch actor.Role {
	case models.RoleClient:
		if booking.ClientID != actor.ID {
			return ErrForbidden
		}
		if nextStatus != models.BookingRejected {
			return ErrInvalidStateTransition
		}
		if booking.Status != models.BookingPending {
			return ErrInvalidStateTransition
		}
		return nil
	case models.RolePsychologist:
		if psychologistID != actor.ID {
			return ErrForbidden
		}
		if booking.Status == models.BookingConfirmed && nextStatus == models.BookingPending {
			return ErrInvalidStateTransition
		}
		if booking.Status == models.BookingRejected && nextStatus != models.BookingRejected {
			return ErrInvalidStateTransition
		}
		return nil
	default:
		return ErrForbidden
	}
}
