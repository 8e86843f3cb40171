package db

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"studyquest/models"
)

const usersCollection = "users"

// Database wraps the Mongo connection and implements the store's persistence
// gateway: one document per identity in the users collection, saved wholesale.
type Database struct {
	client *mongo.Client
	db     *mongo.Database
	users  *mongo.Collection
}

// extractDBName parses the database name from the URI, defaulting to "studyquest"
func extractDBName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "studyquest"
	}
	if u.Path != "" && u.Path != "/" {
		return u.Path[1:] // Trim leading '/'
	}
	return "studyquest"
}

// Connect establishes a connection to MongoDB using the provided URI
func Connect(ctx context.Context, uri string) (*Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Verify connection with a ping
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	dbName := extractDBName(uri)
	log.Printf("Using database: %s", dbName)

	mdb := client.Database(dbName)
	return &Database{
		client: client,
		db:     mdb,
		users:  mdb.Collection(usersCollection),
	}, nil
}

// Close disconnects the client.
func (d *Database) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// CreateProfile inserts a fresh profile document unless one already exists for
// the uid; in that case the existing document is returned untouched.
func (d *Database) CreateProfile(ctx context.Context, p models.UserProfile) (*models.UserProfile, error) {
	existing, err := d.LoadProfile(ctx, p.UID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		log.Printf("Profile already exists for %s, not overwriting", p.UID)
		return existing, nil
	}
	if _, err := d.users.InsertOne(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create profile for %s: %w", p.UID, err)
	}
	return &p, nil
}

// LoadProfile fetches a user document by uid. A missing document is (nil, nil).
func (d *Database) LoadProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	var p models.UserProfile
	err := d.users.FindOne(ctx, bson.M{"uid": uid}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile for %s: %w", uid, err)
	}
	return &p, nil
}

// FindByEmail fetches a user document by email. A missing document is (nil, nil).
func (d *Database) FindByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	var p models.UserProfile
	err := d.users.FindOne(ctx, bson.M{"email": email}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile for %s: %w", email, err)
	}
	return &p, nil
}

// SaveProfile overwrites the mutable fields of an existing user document with
// the given snapshot. The write is a full replacement of every list field, not
// a delta; it fails if the document is absent.
func (d *Database) SaveProfile(ctx context.Context, uid string, snap models.Snapshot) error {
	update := bson.M{"$set": bson.M{
		"xp":            snap.XP,
		"level":         snap.Level,
		"streak":        snap.Streak,
		"powerUps":      snap.PowerUps,
		"achievements":  snap.Achievements,
		"missions":      snap.Missions,
		"exams":         snap.Exams,
		"timetable":     snap.Timetable,
		"lastLoginDate": snap.LastLoginDate,
	}}
	res, err := d.users.UpdateOne(ctx, bson.M{"uid": uid}, update)
	if err != nil {
		return fmt.Errorf("failed to save profile for %s: %w", uid, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("no profile document for %s", uid)
	}
	return nil
}

// UpdateProfileFields applies a partial update to a user document (display
// name, onboarding flag). Fails if the document is absent.
func (d *Database) UpdateProfileFields(ctx context.Context, uid string, fields bson.M) error {
	res, err := d.users.UpdateOne(ctx, bson.M{"uid": uid}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update profile for %s: %w", uid, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("no profile document for %s", uid)
	}
	return nil
}

// DeleteProfile removes a user document.
func (d *Database) DeleteProfile(ctx context.Context, uid string) error {
	if _, err := d.users.DeleteOne(ctx, bson.M{"uid": uid}); err != nil {
		return fmt.Errorf("failed to delete profile for %s: %w", uid, err)
	}
	return nil
}

// TopByXP returns the top-N users by XP descending for the leaderboard.
func (d *Database) TopByXP(ctx context.Context, limit int64) ([]models.LeaderboardEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "xp", Value: -1}}).
		SetLimit(limit)
	cursor, err := d.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.LeaderboardEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode leaderboard: %w", err)
	}
	return entries, nil
}
