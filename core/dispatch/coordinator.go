// Package dispatch implements the fleet coordinator: the single
// serialized surface through which the roster, the waiting queue, the
// trip ledger and the association broadcast are read and mutated. Every
// successful mutation is journaled, published on the event topic and
// recorded against the metrics sink.
package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/todatrack/todatrack/core/audit"
	"github.com/todatrack/todatrack/core/events"
	"github.com/todatrack/todatrack/core/fleet"
	"github.com/todatrack/todatrack/core/ledger"
	"github.com/todatrack/todatrack/core/logger"
	"github.com/todatrack/todatrack/core/metrics"
	"github.com/todatrack/todatrack/core/model"
	"github.com/todatrack/todatrack/internal/pubsub"
)

// DefaultBroadcast is shown whenever no announcement is set.
const DefaultBroadcast = "No announcements at this time."

// Audit journal operation names.
const (
	opRegisterVehicle   = "register_vehicle"
	opDeregisterVehicle = "deregister_vehicle"
	opUpdateVehicle     = "update_vehicle"
	opGoOnDuty          = "go_on_duty"
	opGoOffDuty         = "go_off_duty"
	opStartTrip         = "start_trip"
	opCompleteTrip      = "complete_trip"
	opCloseDay          = "close_day"
	opSetBroadcast      = "set_broadcast"
)

// Coordinator owns the dispatch state. All methods are safe for
// concurrent use; one mutex serializes every operation, so callers
// always observe states in which the roster, the queue and the ledger
// agree.
type Coordinator struct {
	log   logger.Logger
	sink  metrics.MetricsSink
	store audit.Store
	bus   *pubsub.Topic[events.Event]

	now func() time.Time

	mu        sync.Mutex
	roster    *fleet.Roster
	queue     *fleet.WaitingQueue
	ledger    *ledger.TripLedger
	broadcast string
}

// NewCoordinator creates an empty coordinator: no vehicles, an empty
// queue, the trip counter at 1 and the default broadcast. Sink, store
// and bus may be nil when metrics, journaling or the event feed are not
// needed; log must not be nil.
func NewCoordinator(sink metrics.MetricsSink, store audit.Store, bus *pubsub.Topic[events.Event], log logger.Logger) *Coordinator {
	return &Coordinator{
		log:       log,
		sink:      sink,
		store:     store,
		bus:       bus,
		now:       time.Now,
		roster:    fleet.NewRoster(),
		queue:     fleet.NewWaitingQueue(),
		ledger:    ledger.NewTripLedger(),
		broadcast: DefaultBroadcast,
	}
}

// RegisterVehicle adds a vehicle to the roster. The record starts
// unavailable with no trip link regardless of the fields supplied.
// Registering an already registered plate fails.
func (c *Coordinator) RegisterVehicle(v model.Vehicle) (err error) {
	defer func() { recordOp(opRegisterVehicle, err) }()
	c.mu.Lock()
	defer c.mu.Unlock()

	v.Plate = strings.TrimSpace(v.Plate)
	v.Operator.Name = strings.TrimSpace(v.Operator.Name)
	v.Status = model.StatusUnavailable
	v.Operator.Available = false
	v.CurrentTrip = 0
	if verr := v.Validate(); verr != nil {
		err = &ValidationError{Field: "vehicle", Reason: verr.Error()}
		return err
	}
	if c.roster.Has(v.Plate) {
		err = &ValidationError{Field: "plate", Reason: fmt.Sprintf("vehicle %s is already registered", v.Plate)}
		return err
	}
	if aerr := c.roster.Add(v); aerr != nil {
		err = &ValidationError{Field: "plate", Reason: aerr.Error()}
		return err
	}

	c.log.Infof("vehicle %s registered to %s", v.Plate, v.Operator.Name)
	c.journal(opRegisterVehicle, v.Plate, 0, fmt.Sprintf("operator %s", v.Operator.Name), "")
	c.publish(events.VehicleRegistered{Plate: v.Plate, Operator: v.Operator.Name, Route: v.Route, At: c.now()})
	c.recordFleetState()
	return nil
}

// DeregisterVehicle removes a vehicle from the roster and the queue,
// reporting whether it was present. A vehicle on a trip leaves its trip
// in the ledger; the trip can still be completed later.
func (c *Coordinator) DeregisterVehicle(plate string) bool {
	defer recordOp(opDeregisterVehicle, nil)
	c.mu.Lock()
	defer c.mu.Unlock()

	detail := ""
	if v, ok := c.roster.Get(plate); ok && v.CurrentTrip != 0 {
		detail = fmt.Sprintf("deregistered while on trip %d", v.CurrentTrip)
	}
	if !c.roster.Remove(plate) {
		c.log.Debugf("deregister: vehicle %s not in roster", plate)
		return false
	}
	c.queue.Remove(plate)
	queueDepth.Set(float64(c.queue.Len()))

	c.log.Infof("vehicle %s deregistered", plate)
	c.journal(opDeregisterVehicle, plate, 0, detail, "")
	c.publish(events.VehicleDeregistered{Plate: plate, At: c.now()})
	c.recordFleetState()
	return true
}

// UpdateVehicle edits a registered vehicle and returns the updated
// record. Re-plating keeps the roster slot and the queue position; a
// vehicle on a trip cannot be re-plated because its trip references the
// plate.
func (c *Coordinator) UpdateVehicle(plate string, upd VehicleUpdate) (out model.Vehicle, err error) {
	defer func() { recordOp(opUpdateVehicle, err) }()
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.roster.Get(plate)
	if !ok {
		err = &NotFoundError{Kind: "vehicle", ID: plate}
		return out, err
	}

	newPlate := v.Plate
	if upd.Plate != nil {
		newPlate = strings.TrimSpace(*upd.Plate)
		if newPlate == "" {
			err = &ValidationError{Field: "plate", Reason: "plate is required"}
			return out, err
		}
		if newPlate != v.Plate {
			if v.Status == model.StatusOnTrip {
				err = &ValidationError{Field: "plate", Reason: "cannot re-plate a vehicle on a trip"}
				return out, err
			}
			if c.roster.Has(newPlate) {
				err = &ValidationError{Field: "plate", Reason: fmt.Sprintf("vehicle %s is already registered", newPlate)}
				return out, err
			}
		}
	}
	if upd.OperatorName != nil && strings.TrimSpace(*upd.OperatorName) == "" {
		err = &ValidationError{Field: "operator_name", Reason: "operator name is required"}
		return out, err
	}
	if upd.FareRate != nil && *upd.FareRate < 0 {
		err = &ValidationError{Field: "fare_rate", Reason: "fare rate cannot be negative"}
		return out, err
	}

	oldPlate := v.Plate
	if newPlate != oldPlate {
		if rerr := c.roster.Rekey(oldPlate, newPlate); rerr != nil {
			err = &ValidationError{Field: "plate", Reason: rerr.Error()}
			return out, err
		}
		c.queue.Rename(oldPlate, newPlate)
	}
	if upd.OperatorName != nil {
		v.Operator.Name = strings.TrimSpace(*upd.OperatorName)
	}
	if upd.Contact != nil {
		v.Operator.Contact = strings.TrimSpace(*upd.Contact)
	}
	if upd.FareRate != nil {
		v.FareRate = *upd.FareRate
	}
	if upd.Route != nil {
		v.Route = strings.TrimSpace(*upd.Route)
	}

	detail, replated := "", ""
	if newPlate != oldPlate {
		detail = fmt.Sprintf("re-plated from %s", oldPlate)
		replated = oldPlate
	}
	c.log.Infof("vehicle %s updated", v.Plate)
	c.journal(opUpdateVehicle, v.Plate, 0, detail, "")
	c.publish(events.VehicleUpdated{Plate: v.Plate, OldPlate: replated, At: c.now()})
	return *v, nil
}

// SetOnDuty moves a vehicle into the waiting queue. A vehicle already
// waiting keeps its position; a vehicle on a trip cannot go on duty.
func (c *Coordinator) SetOnDuty(plate string) (err error) {
	defer func() { recordOp(opGoOnDuty, err) }()
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.roster.Get(plate)
	if !ok {
		err = &NotFoundError{Kind: "vehicle", ID: plate}
		return err
	}
	switch v.Status {
	case model.StatusWaiting:
		// Idempotent: the vehicle keeps its place in line.
		c.queue.Enqueue(plate)
		c.log.Debugf("vehicle %s already on duty", plate)
		return nil
	case model.StatusOnTrip:
		err = &ValidationError{Field: "status", Reason: fmt.Sprintf("vehicle %s is on trip %d", plate, v.CurrentTrip)}
		return err
	}
	if derr := v.GoOnDuty(); derr != nil {
		err = &ValidationError{Field: "status", Reason: derr.Error()}
		return err
	}
	c.queue.Enqueue(plate)
	queueDepth.Set(float64(c.queue.Len()))

	c.log.Infof("vehicle %s on duty, %d in line", plate, c.queue.Len())
	c.journal(opGoOnDuty, plate, 0, "", "")
	c.publish(events.DutyChanged{Plate: plate, OnDuty: true, QueueDepth: c.queue.Len(), At: c.now()})
	c.recordFleetState()
	return nil
}

// SetOffDuty pulls a waiting vehicle out of the queue. A vehicle
// already off duty is a no-op; a vehicle on a trip must finish first.
func (c *Coordinator) SetOffDuty(plate string) (err error) {
	defer func() { recordOp(opGoOffDuty, err) }()
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.roster.Get(plate)
	if !ok {
		err = &NotFoundError{Kind: "vehicle", ID: plate}
		return err
	}
	switch v.Status {
	case model.StatusUnavailable:
		c.log.Debugf("vehicle %s already off duty", plate)
		return nil
	case model.StatusOnTrip:
		err = &ValidationError{Field: "status", Reason: fmt.Sprintf("vehicle %s is on trip %d", plate, v.CurrentTrip)}
		return err
	}
	if derr := v.GoOffDuty(); derr != nil {
		err = &ValidationError{Field: "status", Reason: derr.Error()}
		return err
	}
	c.queue.Remove(plate)
	queueDepth.Set(float64(c.queue.Len()))

	c.log.Infof("vehicle %s off duty", plate)
	c.journal(opGoOffDuty, plate, 0, "", "")
	c.publish(events.DutyChanged{Plate: plate, OnDuty: false, QueueDepth: c.queue.Len(), At: c.now()})
	c.recordFleetState()
	return nil
}

// StartTrip dispatches a vehicle on a new trip. Validation happens
// before any state changes; a failed call mutates nothing. A vehicle
// dispatched while not in the waiting queue is tolerated and reported
// through the result's Warning.
func (c *Coordinator) StartTrip(plate string, req TripRequest) (res StartTripResult, err error) {
	defer func() { recordOp(opStartTrip, err) }()
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.roster.Get(plate)
	if !ok {
		err = &NotFoundError{Kind: "vehicle", ID: plate}
		return res, err
	}
	if v.CurrentTrip != 0 {
		err = &ValidationError{Field: "plate", Reason: fmt.Sprintf("vehicle %s is already on trip %d", plate, v.CurrentTrip)}
		return res, err
	}
	if !v.Status.CanTransitionTo(model.StatusOnTrip) {
		err = &ValidationError{Field: "status", Reason: fmt.Sprintf("vehicle %s cannot start a trip while %s", plate, v.Status)}
		return res, err
	}
	if req.Passengers < 1 {
		err = &ValidationError{Field: "passengers", Reason: "at least one passenger is required"}
		return res, err
	}
	from := strings.TrimSpace(req.From)
	dest := strings.TrimSpace(req.Destination)
	if from == "" || dest == "" {
		err = &ValidationError{Field: "route", Reason: "origin and destination are required"}
		return res, err
	}
	rate := req.FarePerPassenger
	if rate == 0 {
		rate = v.FareRate
	}
	if rate <= 0 {
		err = &ValidationError{Field: "fare_per_passenger", Reason: "no positive fare rate available"}
		return res, err
	}
	total := rate * float64(req.Passengers)

	at := c.now()
	if berr := v.BeginTrip(c.ledger.NextID()); berr != nil {
		err = &ValidationError{Field: "status", Reason: berr.Error()}
		return res, err
	}
	trip := c.ledger.Open(plate, req.Passengers, from, dest, total, at)

	var warn *ConsistencyWarning
	if !c.queue.Remove(plate) {
		warn = &ConsistencyWarning{Op: opStartTrip, Plate: plate, Detail: "vehicle was not in the waiting queue"}
		warningsTotal.Inc()
		c.log.Warnf("trip %d: vehicle %s was not in the waiting queue", trip.ID, plate)
	}
	queueDepth.Set(float64(c.queue.Len()))

	c.log.Infof("trip %d: %s %s to %s, %d pax, ₱%.2f", trip.ID, plate, from, dest, req.Passengers, total)
	warnText := ""
	if warn != nil {
		warnText = warn.Detail
	}
	c.journal(opStartTrip, plate, trip.ID, fmt.Sprintf("%s to %s, %d passengers, ₱%.2f", from, dest, req.Passengers, total), warnText)
	c.publish(events.TripStarted{TripID: trip.ID, Plate: plate, Passengers: req.Passengers, From: from, Destination: dest, TotalFare: total, At: at})
	c.recordTripStart(trip, warn == nil)
	c.recordFleetState()
	return StartTripResult{Trip: trip, Warning: warn}, nil
}

// CompleteTrip marks a trip arrived and releases its vehicle. The
// vehicle goes to unavailable; re-queueing is the operator's next call.
// Completing an already completed trip changes nothing.
func (c *Coordinator) CompleteTrip(tripID int) (res CompleteTripResult, err error) {
	defer func() { recordOp(opCompleteTrip, err) }()
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.ledger.Find(tripID)
	if !ok {
		err = &NotFoundError{Kind: "trip", ID: strconv.Itoa(tripID)}
		return res, err
	}
	if t.Completed() {
		c.log.Debugf("trip %d already completed", tripID)
		return CompleteTripResult{Trip: *t, AlreadyCompleted: true}, nil
	}
	at := c.now()
	t.Complete(at)
	if v, ok := c.roster.Get(t.Plate); ok {
		if v.CurrentTrip == t.ID {
			if ferr := v.FinishTrip(); ferr != nil {
				c.log.Warnf("trip %d: %v", t.ID, ferr)
			}
		}
	} else {
		// Deregistered mid-trip: the trip record completes on its own.
		c.log.Debugf("trip %d: vehicle %s no longer registered", t.ID, t.Plate)
	}

	c.log.Infof("trip %d completed by %s, ₱%.2f", t.ID, t.Plate, t.TotalFare)
	c.journal(opCompleteTrip, t.Plate, t.ID, fmt.Sprintf("fare ₱%.2f", t.TotalFare), "")
	c.publish(events.TripCompleted{TripID: t.ID, Plate: t.Plate, TotalFare: t.TotalFare, Duration: t.Duration(), At: at})
	c.recordTripCompletion(*t)
	c.recordFleetState()
	return CompleteTripResult{Trip: *t}, nil
}

// CloseDay archives today's completed trips and resets the trip counter
// when no trip stays active. With nothing completed it archives nothing
// and reports a zero-count summary.
func (c *Coordinator) CloseDay() ledger.DaySummary {
	defer recordOp(opCloseDay, nil)
	c.mu.Lock()
	defer c.mu.Unlock()

	sum := c.ledger.CloseDay(c.now())
	c.log.Infof("day closed: %d archived, ₱%.2f earned, counter reset=%v", sum.Archived, sum.TotalFares, sum.CounterReset)
	c.journal(opCloseDay, "", 0, fmt.Sprintf("archived %d trips, ₱%.2f", sum.Archived, sum.TotalFares), "")
	c.publish(events.DayClosed{Archived: sum.Archived, TotalFares: sum.TotalFares, CounterReset: sum.CounterReset, At: sum.ClosedAt})
	c.recordDayClose(sum)
	c.recordFleetState()
	return sum
}

// Broadcast returns the current association announcement.
func (c *Coordinator) Broadcast() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.broadcast
}

// SetBroadcast replaces the association announcement and returns the
// stored text. A blank message restores the default.
func (c *Coordinator) SetBroadcast(msg string) string {
	defer recordOp(opSetBroadcast, nil)
	c.mu.Lock()
	defer c.mu.Unlock()

	msg = strings.TrimSpace(msg)
	if msg == "" {
		msg = DefaultBroadcast
	}
	c.broadcast = msg
	c.log.Infof("broadcast set: %s", msg)
	c.journal(opSetBroadcast, "", 0, msg, "")
	c.publish(events.BroadcastChanged{Message: msg, At: c.now()})
	return msg
}

// Vehicles returns the roster in registration order.
func (c *Coordinator) Vehicles() []model.Vehicle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roster.Vehicles()
}

// Vehicle returns a single roster record by plate.
func (c *Coordinator) Vehicle(plate string) (model.Vehicle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.roster.Get(plate)
	if !ok {
		return model.Vehicle{}, false
	}
	return *v, true
}

// Waiting returns the queue plates in dispatch order.
func (c *Coordinator) Waiting() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Plates()
}

// TodayTrips returns today's trips, active and completed, in creation
// order.
func (c *Coordinator) TodayTrips() []model.Trip {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Today()
}

// ArchivedTrips returns the archive, oldest first.
func (c *Coordinator) ArchivedTrips() []model.Trip {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Archive()
}

// Overview aggregates the dashboard counts.
func (c *Coordinator) Overview() Overview {
	c.mu.Lock()
	defer c.mu.Unlock()

	var completed []model.Trip
	fares := 0.0
	for _, t := range c.ledger.Today() {
		if t.Completed() {
			completed = append(completed, t)
			fares += t.TotalFare
		}
	}
	return Overview{
		Vehicles:       c.roster.Len(),
		Waiting:        c.queue.Len(),
		ActiveTrips:    c.ledger.ActiveCount(),
		CompletedToday: len(completed),
		ArchivedTrips:  c.ledger.ArchivedCount(),
		FaresToday:     fares,
		FareStats:      ledger.ComputeFareStats(completed),
		Broadcast:      c.broadcast,
	}
}

// Close releases the event topic and the audit store.
func (c *Coordinator) Close() error {
	if c.bus != nil {
		c.bus.Close()
	}
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}

// journal appends one audit record, logging instead of failing when the
// store is unavailable.
func (c *Coordinator) journal(op, plate string, tripID int, detail, warning string) {
	if c.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	rec := audit.Record{
		ID:      uuid.NewString(),
		Time:    c.now(),
		Op:      op,
		Plate:   plate,
		TripID:  tripID,
		Detail:  detail,
		Warning: warning,
	}
	if err := c.store.Append(ctx, rec); err != nil {
		c.log.Errorf("audit append failed: %v", err)
	}
}

func (c *Coordinator) publish(ev events.Event) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(ev)
}

func (c *Coordinator) recordTripStart(t model.Trip, fromQueue bool) {
	if c.sink == nil {
		return
	}
	ev := metrics.TripStartEvent{
		TripID:     t.ID,
		Plate:      t.Plate,
		Passengers: t.Passengers,
		TotalFare:  t.TotalFare,
		FromQueue:  fromQueue,
		Time:       t.DepartedAt,
	}
	if err := c.sink.RecordTripStart(ev); err != nil {
		c.log.Errorf("metrics error: %v", err)
	}
}

func (c *Coordinator) recordTripCompletion(t model.Trip) {
	if c.sink == nil {
		return
	}
	ev := metrics.TripCompletionEvent{
		TripID:    t.ID,
		Plate:     t.Plate,
		TotalFare: t.TotalFare,
		Duration:  t.Duration(),
		Time:      t.ArrivedAt,
	}
	if err := c.sink.RecordTripCompletion(ev); err != nil {
		c.log.Errorf("metrics error: %v", err)
	}
}

func (c *Coordinator) recordDayClose(sum ledger.DaySummary) {
	if c.sink == nil {
		return
	}
	ev := metrics.DayCloseEvent{
		Archived:     sum.Archived,
		TotalFares:   sum.TotalFares,
		CounterReset: sum.CounterReset,
		Time:         sum.ClosedAt,
	}
	if err := c.sink.RecordDayClose(ev); err != nil {
		c.log.Errorf("metrics error: %v", err)
	}
}

func (c *Coordinator) recordFleetState() {
	r, ok := c.sink.(metrics.FleetStateRecorder)
	if !ok {
		return
	}
	ev := metrics.FleetStateEvent{
		Vehicles:    c.roster.Len(),
		Waiting:     c.queue.Len(),
		ActiveTrips: c.ledger.ActiveCount(),
		Archived:    c.ledger.ArchivedCount(),
		Time:        c.now(),
	}
	if err := r.RecordFleetState(ev); err != nil {
		c.log.Errorf("fleet state metrics error: %v", err)
	}
}
