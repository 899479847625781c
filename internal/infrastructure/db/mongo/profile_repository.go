package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devconnector/connector-api/internal/core/domain"
)

const collectionProfiles = "profiles"

type ProfileRepository struct {
	col *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{col: db.Collection(collectionProfiles)}
}

type socialDoc struct {
	YouTube   string `bson:"youtube,omitempty"`
	Twitter   string `bson:"twitter,omitempty"`
	Facebook  string `bson:"facebook,omitempty"`
	LinkedIn  string `bson:"linkedin,omitempty"`
	Instagram string `bson:"instagram,omitempty"`
}

type experienceDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	Title       string             `bson:"title"`
	Company     string             `bson:"company"`
	Location    string             `bson:"location,omitempty"`
	From        time.Time          `bson:"from"`
	To          *time.Time         `bson:"to,omitempty"`
	Current     bool               `bson:"current"`
	Description string             `bson:"description,omitempty"`
}

type educationDoc struct {
	ID           primitive.ObjectID `bson:"_id"`
	School       string             `bson:"school"`
	Degree       string             `bson:"degree"`
	FieldOfStudy string             `bson:"fieldofstudy"`
	From         time.Time          `bson:"from"`
	To           *time.Time         `bson:"to,omitempty"`
	Current      bool               `bson:"current"`
	Description  string             `bson:"description,omitempty"`
}

// ownerDoc is the subset of the user joined into a profile.
type ownerDoc struct {
	ID     primitive.ObjectID `bson:"_id"`
	Name   string             `bson:"name"`
	Avatar string             `bson:"avatar"`
}

type profileDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	User           primitive.ObjectID `bson:"user"`
	Company        string             `bson:"company,omitempty"`
	Website        string             `bson:"website,omitempty"`
	Location       string             `bson:"location,omitempty"`
	Status         string             `bson:"status"`
	Skills         []string           `bson:"skills"`
	Bio            string             `bson:"bio,omitempty"`
	GitHubUsername string             `bson:"githubusername,omitempty"`
	Experience     []experienceDoc    `bson:"experience"`
	Education      []educationDoc     `bson:"education"`
	Social         socialDoc          `bson:"social"`
	Date           time.Time          `bson:"date"`
	Owner          *ownerDoc          `bson:"owner,omitempty"`
}

func (d profileDoc) toDomain() *domain.Profile {
	p := &domain.Profile{
		ID:             d.ID.Hex(),
		Owner:          d.User.Hex(),
		Company:        d.Company,
		Website:        d.Website,
		Location:       d.Location,
		Status:         d.Status,
		Skills:         d.Skills,
		Bio:            d.Bio,
		GitHubUsername: d.GitHubUsername,
		Experience:     make([]domain.Experience, 0, len(d.Experience)),
		Education:      make([]domain.Education, 0, len(d.Education)),
		Social: domain.Social{
			YouTube:   d.Social.YouTube,
			Twitter:   d.Social.Twitter,
			Facebook:  d.Social.Facebook,
			LinkedIn:  d.Social.LinkedIn,
			Instagram: d.Social.Instagram,
		},
		CreatedAt: d.Date.UTC(),
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if d.Owner != nil {
		p.User = &domain.UserRef{ID: d.Owner.ID.Hex(), Name: d.Owner.Name, Avatar: d.Owner.Avatar}
	}
	for _, e := range d.Experience {
		p.Experience = append(p.Experience, domain.Experience{
			ID: e.ID.Hex(), Title: e.Title, Company: e.Company, Location: e.Location,
			From: e.From.UTC(), To: e.To, Current: e.Current, Description: e.Description,
		})
	}
	for _, e := range d.Education {
		p.Education = append(p.Education, domain.Education{
			ID: e.ID.Hex(), School: e.School, Degree: e.Degree, FieldOfStudy: e.FieldOfStudy,
			From: e.From.UTC(), To: e.To, Current: e.Current, Description: e.Description,
		})
	}
	return p
}

// populated joins each profile with its owner's name and avatar.
func populated(match bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionUsers,
			"localField":   "user",
			"foreignField": "_id",
			"as":           "owner",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$owner", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{"owner.email": 0, "owner.password": 0, "owner.date": 0}}},
	}
}

func (r *ProfileRepository) aggregate(ctx context.Context, match bson.M) ([]*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Aggregate(ctx, populated(match))
	if err != nil {
		return nil, fmt.Errorf("aggregate profiles: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []profileDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}

	out := make([]*domain.Profile, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *ProfileRepository) FindByOwner(ctx context.Context, ownerID string) (*domain.Profile, error) {
	oid, ok := parseID(ownerID)
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	profiles, err := r.aggregate(ctx, bson.M{"user": oid})
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, domain.ErrProfileNotFound
	}
	return profiles[0], nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]*domain.Profile, error) {
	return r.aggregate(ctx, bson.M{})
}

// Upsert sets the supplied fields on the owner's profile, creating it on
// first use. Status, skills and social are always replaced; other empty
// fields are left untouched.
func (r *ProfileRepository) Upsert(ctx context.Context, ownerID string, f domain.ProfileFields) (*domain.Profile, error) {
	oid, ok := parseID(ownerID)
	if !ok {
		return nil, domain.ErrProfileNotFound
	}

	set := bson.M{
		"status": f.Status,
		"skills": f.Skills,
		"social": socialDoc{
			YouTube:   f.Social.YouTube,
			Twitter:   f.Social.Twitter,
			Facebook:  f.Social.Facebook,
			LinkedIn:  f.Social.LinkedIn,
			Instagram: f.Social.Instagram,
		},
	}
	for key, value := range map[string]string{
		"company":        f.Company,
		"website":        f.Website,
		"location":       f.Location,
		"bio":            f.Bio,
		"githubusername": f.GitHubUsername,
	} {
		if value != "" {
			set[key] = value
		}
	}

	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"date":       time.Now().UTC(),
			"experience": bson.A{},
			"education":  bson.A{},
		},
	}

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateOne(opCtx, bson.M{"user": oid}, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		// Lost a concurrent first-save race; the profile exists now.
		_, err = r.col.UpdateOne(opCtx, bson.M{"user": oid}, update)
	}
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return r.FindByOwner(ctx, ownerID)
}

func (r *ProfileRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	oid, ok := parseID(ownerID)
	if !ok {
		return domain.ErrProfileNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"user": oid})
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func (r *ProfileRepository) PushExperience(ctx context.Context, ownerID string, exp domain.Experience) (*domain.Profile, error) {
	doc := experienceDoc{
		ID: primitive.NewObjectID(), Title: exp.Title, Company: exp.Company, Location: exp.Location,
		From: exp.From, To: exp.To, Current: exp.Current, Description: exp.Description,
	}
	return r.prepend(ctx, ownerID, "experience", doc)
}

func (r *ProfileRepository) PushEducation(ctx context.Context, ownerID string, edu domain.Education) (*domain.Profile, error) {
	doc := educationDoc{
		ID: primitive.NewObjectID(), School: edu.School, Degree: edu.Degree, FieldOfStudy: edu.FieldOfStudy,
		From: edu.From, To: edu.To, Current: edu.Current, Description: edu.Description,
	}
	return r.prepend(ctx, ownerID, "education", doc)
}

func (r *ProfileRepository) RemoveExperience(ctx context.Context, ownerID, expID string) (*domain.Profile, error) {
	return r.pull(ctx, ownerID, "experience", expID, domain.ErrExperienceNotFound)
}

func (r *ProfileRepository) RemoveEducation(ctx context.Context, ownerID, eduID string) (*domain.Profile, error) {
	return r.pull(ctx, ownerID, "education", eduID, domain.ErrEducationNotFound)
}

// prepend pushes entry to the front of the named array in one update.
func (r *ProfileRepository) prepend(ctx context.Context, ownerID, field string, entry any) (*domain.Profile, error) {
	oid, ok := parseID(ownerID)
	if !ok {
		return nil, domain.ErrProfileNotFound
	}

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$push": bson.M{field: bson.M{"$each": bson.A{entry}, "$position": 0}}}
	res, err := r.col.UpdateOne(opCtx, bson.M{"user": oid}, update)
	if err != nil {
		return nil, fmt.Errorf("push %s: %w", field, err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrProfileNotFound
	}
	return r.FindByOwner(ctx, ownerID)
}

// pull removes the entry with entryID from the named array. The filter only
// matches when the entry exists, so a miss is told apart from a missing
// profile by a follow-up lookup.
func (r *ProfileRepository) pull(ctx context.Context, ownerID, field, entryID string, missing error) (*domain.Profile, error) {
	oid, ok := parseID(ownerID)
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	eid, ok := parseID(entryID)
	if !ok {
		return nil, missing
	}

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"user": oid, field + "._id": eid}
	update := bson.M{"$pull": bson.M{field: bson.M{"_id": eid}}}
	res, err := r.col.UpdateOne(opCtx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("pull %s: %w", field, err)
	}
	if res.MatchedCount == 0 {
		if _, err := r.FindByOwner(ctx, ownerID); err != nil {
			return nil, err
		}
		return nil, missing
	}
	return r.FindByOwner(ctx, ownerID)
}

// EnsureIndexes makes the owner reference unique: one profile per user.
func (r *ProfileRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
