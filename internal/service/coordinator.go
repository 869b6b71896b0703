package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"voltswap/internal/models"
	"voltswap/internal/repository"
	"voltswap/internal/state"
)

// Test seams, matching real id/time generation in production.
var (
	idGenerator = uuid.NewString
	timeNow     = func() time.Time { return time.Now().UTC() }
)

// GridStore is the inventory authority for pillars and their slots.
type GridStore interface {
	Pillar(ctx context.Context, pillarID string) (*models.Pillar, error)
	PillarSlots(ctx context.Context, pillarID string) ([]models.Slot, error)
	ReserveSlot(ctx context.Context, slotID string, res models.Reservation) error
	OccupySlot(ctx context.Context, slotID, batteryID string) error
	ReleaseSlot(ctx context.Context, slotID string) error
	ClearReservation(ctx context.Context, slotID string) error
}

// BatteryStore persists battery records.
type BatteryStore interface {
	BySerial(ctx context.Context, serial string) (*models.Battery, error)
	Create(ctx context.Context, battery *models.Battery) error
	UpdateStatus(ctx context.Context, batteryID, status string) error
}

// SwapLog records swap lifecycle events durably.
type SwapLog interface {
	RecordInitiated(ctx context.Context, session *models.SwapSession) error
	RecordInserted(ctx context.Context, session *models.SwapSession) error
	RecordCompleted(ctx context.Context, session *models.SwapSession, summary models.SwapSummary) error
	RecordExpired(ctx context.Context, swapID string) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]models.SwapRecord, error)
}

// BookingGateway exposes the booking subsystem the coordinator gates on.
type BookingGateway interface {
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	MarkCompleted(ctx context.Context, bookingID string) error
}

// SessionMirror caches active sessions outside the process. Optional.
type SessionMirror interface {
	Save(ctx context.Context, session *models.SwapSession) error
	Delete(ctx context.Context, swapID string) error
}

// GridNotifier pushes refreshed grid state to subscribers. Optional.
type GridNotifier interface {
	GridChanged(pillarID string)
}

// InitiateInput identifies the booking a swap session is opened for.
type InitiateInput struct {
	UserID    int64
	BookingID string
	VehicleID string
}

// InitiateResult is returned to the caller after a session is opened.
type InitiateResult struct {
	Session      *models.SwapSession
	Instructions []string
	Message      string
}

// InsertInput carries the old-battery handover.
type InsertInput struct {
	SwapID   string
	SlotID   string
	Serial   string
	Metadata models.BatteryMetadata
}

// InsertResult acknowledges the deposit and points at the next step.
type InsertResult struct {
	SwapID   string
	Message  string
	NextStep string
}

// CompleteResult closes the loop with the swap summary.
type CompleteResult struct {
	Message string
	Summary models.SwapSummary
}

// SwapCoordinator owns every swap session transition. Slot and battery
// allocation for a pillar is serialized through a per-pillar lock so two
// concurrent initiates can never claim the same slot or battery.
type SwapCoordinator struct {
	grid      GridStore
	batteries BatteryStore
	swaps     SwapLog
	bookings  BookingGateway
	sessions  *state.SessionStore
	mirror    SessionMirror
	notifier  GridNotifier
	logger    *zap.Logger
	ttl       time.Duration

	mu          sync.Mutex
	pillarLocks map[string]*sync.Mutex
}

// NewSwapCoordinator builds the coordinator.
func NewSwapCoordinator(
	grid GridStore,
	batteries BatteryStore,
	swaps SwapLog,
	bookings BookingGateway,
	sessions *state.SessionStore,
	mirror SessionMirror,
	notifier GridNotifier,
	ttl time.Duration,
	logger *zap.Logger,
) *SwapCoordinator {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &SwapCoordinator{
		grid:        grid,
		batteries:   batteries,
		swaps:       swaps,
		bookings:    bookings,
		sessions:    sessions,
		mirror:      mirror,
		notifier:    notifier,
		logger:      logger,
		ttl:         ttl,
		pillarLocks: make(map[string]*sync.Mutex),
	}
}

func (c *SwapCoordinator) pillarLock(pillarID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.pillarLocks[pillarID]
	if !ok {
		lock = &sync.Mutex{}
		c.pillarLocks[pillarID] = lock
	}
	return lock
}

// Initiate opens a swap session for an eligible booking: earmarks the booked
// battery's slot for withdrawal and reserves one empty slot for the deposit.
func (c *SwapCoordinator) Initiate(ctx context.Context, input InitiateInput) (*InitiateResult, error) {
	booking, err := c.bookings.GetBooking(ctx, input.BookingID)
	if err != nil {
		return nil, Errf(KindInvalidBookingState, "booking %s not found", input.BookingID)
	}
	if !booking.EligibleForSwap() {
		return nil, Errf(KindInvalidBookingState, "booking %s is %s, must be booked or arrived", booking.ID, booking.Status)
	}
	if booking.BatteryModel == "" {
		return nil, Errf(KindNoBatteryAvailable, "booking %s has no compatible battery model", booking.ID)
	}

	lock := c.pillarLock(booking.PillarID)
	lock.Lock()
	defer lock.Unlock()

	// Checked under the pillar lock: a concurrent initiate for the same
	// booking is either already stored or still waiting on the lock.
	if c.sessions.ActiveForBooking(booking.ID) {
		return nil, Errf(KindInvalidBookingState, "booking %s already has an active swap session", booking.ID)
	}

	slots, err := c.grid.PillarSlots(ctx, booking.PillarID)
	if err != nil {
		return nil, fmt.Errorf("initiate: load pillar %s: %w", booking.PillarID, err)
	}

	bookedSlot, ok := pickBookedSlot(slots, booking.BatteryModel)
	if !ok {
		return nil, Errf(KindNoBatteryAvailable, "no %s battery available in pillar %s", booking.BatteryModel, booking.PillarID)
	}
	emptySlot, ok := pickEmptySlot(slots)
	if !ok {
		return nil, Errf(KindNoEmptySlot, "no empty slot available in pillar %s", booking.PillarID)
	}

	reservation := models.Reservation{BookingID: booking.ID, UserID: input.UserID}
	if err := c.grid.ReserveSlot(ctx, emptySlot.ID, reservation); err != nil {
		return nil, fmt.Errorf("initiate: reserve slot %s: %w", emptySlot.ID, err)
	}
	if err := c.batteries.UpdateStatus(ctx, bookedSlot.Battery.ID, models.BatteryStatusBooking); err != nil {
		// Roll the reservation back so the pillar is not left half-allocated.
		if relErr := c.grid.ClearReservation(ctx, emptySlot.ID); relErr != nil {
			c.logger.Error("failed to roll back reservation",
				zap.String("slot_id", emptySlot.ID), zap.Error(relErr))
		}
		return nil, fmt.Errorf("initiate: earmark battery %s: %w", bookedSlot.Battery.ID, err)
	}

	now := timeNow()
	session := &models.SwapSession{
		SwapID:    idGenerator(),
		BookingID: booking.ID,
		VehicleID: booking.VehicleID,
		UserID:    input.UserID,
		PillarID:  booking.PillarID,
		Phase:     models.PhaseInitiated,
		BookedBattery: models.BatteryRef{
			SlotID:     bookedSlot.ID,
			SlotNumber: bookedSlot.SlotNumber,
			BatteryID:  bookedSlot.Battery.ID,
			Serial:     bookedSlot.Battery.Serial,
			Model:      bookedSlot.Battery.Model,
			SOH:        bookedSlot.Battery.SOH,
		},
		EmptySlot: models.SlotRef{
			SlotID:     emptySlot.ID,
			SlotNumber: emptySlot.SlotNumber,
		},
		StartedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}

	c.sessions.Put(session)
	if err := c.swaps.RecordInitiated(ctx, session); err != nil {
		c.logger.Warn("failed to record initiated swap", zap.String("swap_id", session.SwapID), zap.Error(err))
	}
	c.saveMirror(ctx, session)
	c.gridChanged(session.PillarID)

	c.logger.Info("swap session initiated",
		zap.String("swap_id", session.SwapID),
		zap.String("booking_id", booking.ID),
		zap.Int("booked_slot", bookedSlot.SlotNumber),
		zap.Int("empty_slot", emptySlot.SlotNumber),
	)

	return &InitiateResult{
		Session: session,
		Instructions: []string{
			fmt.Sprintf("Insert your old battery into slot %d.", emptySlot.SlotNumber),
			fmt.Sprintf("Withdraw your new battery from slot %d after the deposit is confirmed.", bookedSlot.SlotNumber),
		},
		Message: fmt.Sprintf("Swap initiated. Slot %d is reserved for your old battery.", emptySlot.SlotNumber),
	}, nil
}

// InsertOldBattery records the deposit of the user's old battery into the
// reserved slot. Inserting twice is rejected, never silently absorbed.
func (c *SwapCoordinator) InsertOldBattery(ctx context.Context, input InsertInput) (*InsertResult, error) {
	session, ok := c.sessions.Get(input.SwapID)
	if !ok {
		return nil, Errf(KindSessionNotFound, "swap session %s not found or expired", input.SwapID)
	}

	lock := c.pillarLock(session.PillarID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock: a concurrent call may have advanced the phase.
	session, ok = c.sessions.Get(input.SwapID)
	if !ok {
		return nil, Errf(KindSessionNotFound, "swap session %s not found or expired", input.SwapID)
	}

	switch session.Phase {
	case models.PhaseCompleted:
		return nil, Errf(KindSessionAlreadyCompleted, "swap %s is already completed", session.SwapID)
	case models.PhaseOldBatteryInserted:
		return nil, Errf(KindAlreadyInserted, "old battery already inserted for swap %s", session.SwapID)
	}
	if input.SlotID != session.EmptySlot.SlotID {
		return nil, Errf(KindSlotMismatch, "slot %s is not the reserved slot for swap %s", input.SlotID, session.SwapID)
	}

	battery, err := c.ensureBattery(ctx, input.Serial, input.Metadata)
	if err != nil {
		return nil, fmt.Errorf("insert: ensure battery %s: %w", input.Serial, err)
	}

	if err := c.grid.OccupySlot(ctx, session.EmptySlot.SlotID, battery.ID); err != nil {
		return nil, fmt.Errorf("insert: occupy slot %s: %w", session.EmptySlot.SlotID, err)
	}
	// Charging admission: every deposited battery goes straight on charge.
	if err := c.batteries.UpdateStatus(ctx, battery.ID, models.BatteryStatusCharging); err != nil {
		c.logger.Warn("failed to set deposited battery charging",
			zap.String("battery_id", battery.ID), zap.Error(err))
	}

	session.Phase = models.PhaseOldBatteryInserted
	session.OldBatteryID = battery.ID
	session.OldSerial = battery.Serial
	session.InsertedAt = timeNow()
	c.sessions.Put(session)
	if err := c.swaps.RecordInserted(ctx, session); err != nil {
		c.logger.Warn("failed to record inserted swap", zap.String("swap_id", session.SwapID), zap.Error(err))
	}
	c.saveMirror(ctx, session)
	c.gridChanged(session.PillarID)

	c.logger.Info("old battery inserted",
		zap.String("swap_id", session.SwapID),
		zap.String("serial", battery.Serial),
		zap.Int("slot", session.EmptySlot.SlotNumber),
	)

	return &InsertResult{
		SwapID:   session.SwapID,
		Message:  fmt.Sprintf("Old battery %s received in slot %d.", battery.Serial, session.EmptySlot.SlotNumber),
		NextStep: fmt.Sprintf("Withdraw your new battery from slot %d.", session.BookedBattery.SlotNumber),
	}, nil
}

// Complete releases the booked battery to the user and finalizes the session.
// Completing before the old battery is inserted is rejected: the new battery
// cannot leave the pillar before the old one is returned.
func (c *SwapCoordinator) Complete(ctx context.Context, swapID string) (*CompleteResult, error) {
	session, ok := c.sessions.Get(swapID)
	if !ok {
		return nil, Errf(KindSessionNotFound, "swap session %s not found or expired", swapID)
	}

	lock := c.pillarLock(session.PillarID)
	lock.Lock()
	defer lock.Unlock()

	session, ok = c.sessions.Get(swapID)
	if !ok {
		return nil, Errf(KindSessionNotFound, "swap session %s not found or expired", swapID)
	}

	switch session.Phase {
	case models.PhaseCompleted:
		return nil, Errf(KindSessionAlreadyCompleted, "swap %s is already completed", session.SwapID)
	case models.PhaseInitiated:
		return nil, Errf(KindOldBatteryNotInserted, "insert the old battery before completing swap %s", session.SwapID)
	}

	slots, err := c.grid.PillarSlots(ctx, session.PillarID)
	if err != nil {
		return nil, fmt.Errorf("complete: load pillar %s: %w", session.PillarID, err)
	}
	bookedSlot := findSlot(slots, session.BookedBattery.SlotID)
	if bookedSlot == nil || !bookedSlot.HoldsBattery() || bookedSlot.Battery.Serial != session.BookedBattery.Serial {
		return nil, Errf(KindBatteryMismatch, "slot %d no longer holds battery %s", session.BookedBattery.SlotNumber, session.BookedBattery.Serial)
	}

	if err := c.grid.ReleaseSlot(ctx, bookedSlot.ID); err != nil {
		return nil, fmt.Errorf("complete: release slot %s: %w", bookedSlot.ID, err)
	}
	if err := c.batteries.UpdateStatus(ctx, session.BookedBattery.BatteryID, models.BatteryStatusInUse); err != nil {
		c.logger.Warn("failed to mark withdrawn battery in-use",
			zap.String("battery_id", session.BookedBattery.BatteryID), zap.Error(err))
	}

	session.Phase = models.PhaseCompleted
	session.CompletedAt = timeNow()
	summary := models.SwapSummary{
		OldBattery:       session.OldSerial,
		NewBattery:       session.BookedBattery.Serial,
		NewBatteryCharge: session.BookedBattery.SOH,
		SwapDuration:     session.CompletedAt.Sub(session.StartedAt),
	}

	// The completed session stays in the store until the janitor evicts it,
	// so a duplicate complete is told apart from an unknown or expired swap.
	c.sessions.Put(session)
	if err := c.swaps.RecordCompleted(ctx, session, summary); err != nil {
		c.logger.Warn("failed to record completed swap", zap.String("swap_id", session.SwapID), zap.Error(err))
	}
	c.deleteMirror(ctx, session.SwapID)
	c.gridChanged(session.PillarID)

	// The phase advance is authoritative; a failed booking update only means
	// the booking subsystem is behind, so it is logged and retried upstream.
	if err := c.bookings.MarkCompleted(ctx, session.BookingID); err != nil {
		c.logger.Error("failed to mark booking completed",
			zap.String("booking_id", session.BookingID), zap.Error(err))
	}

	c.logger.Info("swap completed",
		zap.String("swap_id", session.SwapID),
		zap.String("old_battery", summary.OldBattery),
		zap.String("new_battery", summary.NewBattery),
		zap.Duration("duration", summary.SwapDuration),
	)

	return &CompleteResult{
		Message: fmt.Sprintf("Swap complete. Battery %s is yours.", summary.NewBattery),
		Summary: summary,
	}, nil
}

// Session returns a copy of a tracked session. Completed sessions remain
// readable until the janitor evicts them.
func (c *SwapCoordinator) Session(swapID string) (*models.SwapSession, error) {
	session, ok := c.sessions.Get(swapID)
	if !ok {
		return nil, Errf(KindSessionNotFound, "swap session %s not found or expired", swapID)
	}
	return session, nil
}

// History returns the caller's swap records, newest first.
func (c *SwapCoordinator) History(ctx context.Context, userID int64, limit int) ([]models.SwapRecord, error) {
	return c.swaps.ListByUser(ctx, userID, limit)
}

// CheckSlotAction projects the state machine onto a slot click: at each phase
// exactly one slot is actionable, every other click is a non-fatal notice.
func (c *SwapCoordinator) CheckSlotAction(swapID, slotID string) error {
	session, ok := c.sessions.Get(swapID)
	if !ok {
		return Errf(KindSessionNotFound, "swap session %s not found or expired", swapID)
	}
	switch session.Phase {
	case models.PhaseInitiated:
		if slotID != session.EmptySlot.SlotID {
			return Errf(KindWrongSlotSelected, "insert your old battery into slot %d", session.EmptySlot.SlotNumber)
		}
	case models.PhaseOldBatteryInserted:
		if slotID != session.BookedBattery.SlotID {
			return Errf(KindWrongSlotSelected, "withdraw your new battery from slot %d", session.BookedBattery.SlotNumber)
		}
	default:
		return Errf(KindWrongSlotSelected, "swap %s has no actionable slot", swapID)
	}
	return nil
}

// ExpireStale releases slots held by sessions that outlived their TTL. A
// reserved deposit slot goes back to empty; an occupied deposit slot keeps its
// battery and becomes regular inventory. The withdrawal earmark is dropped.
// Completed sessions past their deadline are evicted without touching the grid.
func (c *SwapCoordinator) ExpireStale(ctx context.Context, now time.Time) int {
	released := 0
	for _, session := range c.sessions.Expired(now) {
		if c.expireSession(ctx, session) {
			released++
		}
	}
	return released
}

func (c *SwapCoordinator) expireSession(ctx context.Context, session *models.SwapSession) bool {
	lock := c.pillarLock(session.PillarID)
	lock.Lock()
	defer lock.Unlock()

	current, ok := c.sessions.Get(session.SwapID)
	if !ok {
		return false
	}
	if !current.Active() {
		c.sessions.Delete(current.SwapID)
		return false
	}

	if current.Phase == models.PhaseInitiated {
		if err := c.grid.ClearReservation(ctx, current.EmptySlot.SlotID); err != nil {
			c.logger.Error("failed to release reserved slot on expiry",
				zap.String("slot_id", current.EmptySlot.SlotID), zap.Error(err))
		}
	}
	if err := c.batteries.UpdateStatus(ctx, current.BookedBattery.BatteryID, models.BatteryStatusFull); err != nil {
		c.logger.Warn("failed to release booked battery on expiry",
			zap.String("battery_id", current.BookedBattery.BatteryID), zap.Error(err))
	}

	c.sessions.Delete(current.SwapID)
	if err := c.swaps.RecordExpired(ctx, current.SwapID); err != nil {
		c.logger.Warn("failed to record expired swap", zap.String("swap_id", current.SwapID), zap.Error(err))
	}
	c.deleteMirror(ctx, current.SwapID)
	c.gridChanged(current.PillarID)

	c.logger.Info("swap session expired",
		zap.String("swap_id", current.SwapID),
		zap.String("booking_id", current.BookingID),
		zap.String("phase", current.Phase),
	)
	return true
}

func (c *SwapCoordinator) ensureBattery(ctx context.Context, serial string, meta models.BatteryMetadata) (*models.Battery, error) {
	battery, err := c.batteries.BySerial(ctx, serial)
	if err == nil {
		return battery, nil
	}
	if !errors.Is(err, repository.ErrBatteryNotFound) {
		return nil, err
	}

	model := meta.Model
	if model == "" {
		model = "unknown"
	}
	soh := meta.SOH
	if soh <= 0 || soh > 100 {
		soh = 80
	}
	battery = &models.Battery{
		ID:           idGenerator(),
		Serial:       serial,
		Model:        model,
		Manufacturer: meta.Manufacturer,
		CapacityKWh:  meta.CapacityKWh,
		Voltage:      meta.Voltage,
		SOH:          soh,
		Price:        meta.Price,
		Status:       models.BatteryStatusCharging,
	}
	if err := c.batteries.Create(ctx, battery); err != nil {
		return nil, err
	}
	return battery, nil
}

func (c *SwapCoordinator) saveMirror(ctx context.Context, session *models.SwapSession) {
	if c.mirror == nil {
		return
	}
	if err := c.mirror.Save(ctx, session); err != nil {
		c.logger.Warn("failed to mirror swap session", zap.String("swap_id", session.SwapID), zap.Error(err))
	}
}

func (c *SwapCoordinator) deleteMirror(ctx context.Context, swapID string) {
	if c.mirror == nil {
		return
	}
	if err := c.mirror.Delete(ctx, swapID); err != nil {
		c.logger.Warn("failed to drop mirrored swap session", zap.String("swap_id", swapID), zap.Error(err))
	}
}

func (c *SwapCoordinator) gridChanged(pillarID string) {
	if c.notifier != nil {
		c.notifier.GridChanged(pillarID)
	}
}

func findSlot(slots []models.Slot, slotID string) *models.Slot {
	for i := range slots {
		if slots[i].ID == slotID {
			return &slots[i]
		}
	}
	return nil
}
