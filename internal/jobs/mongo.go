package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

const (
	defaultMongoDatabase   = "joblo_jobs"
	defaultMongoCollection = "jobs"
)

// MongoConfig describes where scraped jobs live.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore reads and writes jobs in a MongoDB collection that uses the
// scrapers' document layout.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *zap.Logger
}

type mongoJob struct {
	ID          any        `bson:"_id,omitempty"`
	Title       string     `bson:"title"`
	Company     string     `bson:"company"`
	Location    string     `bson:"location"`
	Experience  string     `bson:"experience"`
	Skills      []string   `bson:"skills"`
	Description string     `bson:"job_description"`
	PostedDate  *time.Time `bson:"posted_date,omitempty"`
	URL         string     `bson:"url"`
	Source      string     `bson:"source"`
	Salary      string     `bson:"salary,omitempty"`
	JobType     string     `bson:"job_type,omitempty"`
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig, logger *zap.Logger) (*MongoStore, error) {
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}

	database := cfg.Database
	if database == "" {
		database = defaultMongoDatabase
	}
	collection := cfg.Collection
	if collection == "" {
		collection = defaultMongoCollection
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Debug("connected to mongo",
		zap.String("database", database),
		zap.String("collection", collection),
	)

	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger,
	}, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Job, error) {
	var doc mongoJob
	err := s.collection.FindOne(ctx, bson.M{"_id": bson.M{"$in": idCandidates(id)}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("find job %s: %w", id, err)
	}
	return doc.toJob(), nil
}

func (s *MongoStore) All(ctx context.Context) (*Jobs, error) {
	cursor, err := s.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find jobs: %w", err)
	}

	var docs []mongoJob
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode jobs: %w", err)
	}

	items := make([]*Job, 0, len(docs))
	for _, doc := range docs {
		items = append(items, doc.toJob())
	}

	s.logger.Debug("loaded jobs from mongo", zap.Int("count", len(items)))

	return &Jobs{Items: items}, nil
}

// Save inserts jobs that are not stored yet.
func (s *MongoStore) Save(ctx context.Context, items []*Job) (int, error) {
	added := 0
	for _, job := range items {
		AssignID(job)

		count, err := s.collection.CountDocuments(ctx, bson.M{"_id": job.ID})
		if err != nil {
			return added, fmt.Errorf("check job %s: %w", job.ID, err)
		}
		if count > 0 {
			continue
		}

		if _, err := s.collection.InsertOne(ctx, fromJob(job)); err != nil {
			return added, fmt.Errorf("insert job %s: %w", job.ID, err)
		}
		added++
	}
	return added, nil
}

// EnsureIndexes creates the indexes the dashboard queries rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "title", Value: "text"},
			{Key: "job_description", Value: "text"},
			{Key: "skills", Value: "text"},
		}},
		{Keys: bson.D{{Key: "source", Value: 1}}},
		{Keys: bson.D{{Key: "posted_date", Value: -1}}},
	}

	if _, err := s.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// idCandidates matches both string ids and ObjectIDs written by older scrapers.
func idCandidates(id string) []any {
	candidates := []any{id}
	if oid, err := bson.ObjectIDFromHex(id); err == nil {
		candidates = append(candidates, oid)
	}
	return candidates
}

func (d mongoJob) toJob() *Job {
	job := &Job{
		Title:       d.Title,
		Company:     d.Company,
		Location:    d.Location,
		Experience:  d.Experience,
		Skills:      cleanSkills(d.Skills),
		Description: d.Description,
		PostedDate:  d.PostedDate,
		URL:         d.URL,
		Source:      ParsePlatform(d.Source),
		Salary:      d.Salary,
		JobType:     d.JobType,
	}

	switch id := d.ID.(type) {
	case bson.ObjectID:
		job.ID = id.Hex()
	case string:
		job.ID = id
	case nil:
	default:
		job.ID = fmt.Sprintf("%v", id)
	}

	AssignID(job)
	return job
}

func fromJob(job *Job) mongoJob {
	return mongoJob{
		ID:          job.ID,
		Title:       job.Title,
		Company:     job.Company,
		Location:    job.Location,
		Experience:  job.Experience,
		Skills:      job.Skills,
		Description: job.Description,
		PostedDate:  job.PostedDate,
		URL:         job.URL,
		Source:      string(job.Source),
		Salary:      job.Salary,
		JobType:     job.JobType,
	}
}
