package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tax-credit-model/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	simulationsCollection   = "simulations"
	electrolyzersCollection = "electrolyzers"
)

// MongoStore keeps one document per simulation and per electrolyzer, keyed
// by _id. Single-document writes are atomic, which gives per-id serialization.
type MongoStore struct {
	client        *mongo.Client
	simulations   *mongo.Collection
	electrolyzers *mongo.Collection
	log           *logrus.Logger
}

func NewMongoStore(ctx context.Context, uri, database string, log *logrus.Logger) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	log.WithFields(logrus.Fields{"database": database}).Info("mongo store connected")
	return &MongoStore{
		client:        client,
		simulations:   db.Collection(simulationsCollection),
		electrolyzers: db.Collection(electrolyzersCollection),
		log:           log,
	}, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) GetSimulationState(ctx context.Context, id string) (*model.SimulationState, error) {
	var st model.SimulationState
	err := s.simulations.FindOne(ctx, bson.M{"_id": id}).Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("simulation %q: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get simulation %q: %v: %w", id, err, model.ErrUnknown)
	}
	return &st, nil
}

func (s *MongoStore) CreateSimulationState(ctx context.Context, initial model.SimulationState) (*model.SimulationState, error) {
	if initial.ID == "" {
		initial.ID = uuid.NewString()
	}
	n, err := s.simulations.CountDocuments(ctx, bson.M{"_id": initial.ID})
	if err != nil {
		return nil, fmt.Errorf("check simulation %q: %v: %w", initial.ID, err, model.ErrUnknown)
	}
	if n > 0 {
		return nil, fmt.Errorf("simulation %q already exists: %w", initial.ID, model.ErrInvalidArgument)
	}
	if _, err := s.simulations.InsertOne(ctx, initial); err != nil {
		return nil, fmt.Errorf("insert simulation %q: %v: %w", initial.ID, err, model.ErrUnknown)
	}
	return &initial, nil
}

func (s *MongoStore) UpdateSimulationState(ctx context.Context, state model.SimulationState) (*model.SimulationState, error) {
	if state.ID == "" {
		return nil, fmt.Errorf("update simulation without id: %w", model.ErrInvalidArgument)
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.simulations.ReplaceOne(ctx, bson.M{"_id": state.ID}, state, opts); err != nil {
		return nil, fmt.Errorf("upsert simulation %q: %v: %w", state.ID, err, model.ErrUnknown)
	}
	s.log.WithFields(logrus.Fields{
		"simulation_id": state.ID,
		"steps":         len(state.Emissions),
	}).Debug("simulation persisted")
	return &state, nil
}

func (s *MongoStore) ListSimulationStates(ctx context.Context) ([]model.SimulationSummary, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.simulations.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list simulations: %v: %w", err, model.ErrUnknown)
	}
	defer cur.Close(ctx)

	var states []model.SimulationState
	if err := cur.All(ctx, &states); err != nil {
		return nil, fmt.Errorf("decode simulations: %v: %w", err, model.ErrPoisoned)
	}
	out := make([]model.SimulationSummary, 0, len(states))
	for _, st := range states {
		out = append(out, st.ToSummary())
	}
	return out, nil
}

func (s *MongoStore) GetElectrolyzer(ctx context.Context, id string) (*model.Electrolyzer, error) {
	var e model.Electrolyzer
	err := s.electrolyzers.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("electrolyzer %q: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get electrolyzer %q: %v: %w", id, err, model.ErrUnknown)
	}
	return &e, nil
}

func (s *MongoStore) CreateElectrolyzer(ctx context.Context, e model.Electrolyzer) (*model.Electrolyzer, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, model.ErrInvalidArgument)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.electrolyzers.ReplaceOne(ctx, bson.M{"_id": e.ID}, e, opts); err != nil {
		return nil, fmt.Errorf("insert electrolyzer %q: %v: %w", e.ID, err, model.ErrUnknown)
	}
	return &e, nil
}

func (s *MongoStore) ListElectrolyzers(ctx context.Context) ([]model.Electrolyzer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.electrolyzers.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list electrolyzers: %v: %w", err, model.ErrUnknown)
	}
	defer cur.Close(ctx)

	out := []model.Electrolyzer{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode electrolyzers: %v: %w", err, model.ErrPoisoned)
	}
	return out, nil
}
