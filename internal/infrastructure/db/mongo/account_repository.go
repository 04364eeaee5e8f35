package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vavastapak/account-service/internal/core/domain"
)

const (
	accountCollection = "accounts"

	emailIndex  = "email_unique"
	mobileIndex = "mobile_unique"
)

type MongoAccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *MongoAccountRepository {
	return &MongoAccountRepository{coll: db.Collection(accountCollection)}
}

type mongoAccount struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password,omitempty"`
	Mobile    string             `bson:"mobile"`
	Role      string             `bson:"role,omitempty"`
	CreatedAt int64              `bson:"created_at"`
	UpdatedAt int64              `bson:"updated_at"`
}

// EnsureIndexes creates the unique indexes that back identity uniqueness.
// It is idempotent.
func (r *MongoAccountRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName(emailIndex).SetUnique(true)},
		{Keys: bson.D{{Key: "mobile", Value: 1}}, Options: options.Index().SetName(mobileIndex).SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("create account indexes: %w", err)
	}
	return nil
}

func (r *MongoAccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	now := time.Now().UTC()
	created := *account
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = now
	}

	doc := mongoAccount{
		Name:      created.Name,
		Email:     created.Email,
		Password:  created.SecretHash,
		Mobile:    created.Mobile,
		Role:      created.Role,
		CreatedAt: created.CreatedAt.Unix(),
		UpdatedAt: created.UpdatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateIdentity(err)
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *MongoAccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var doc mongoAccount
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	a := toDomain(doc)
	return &a, nil
}

func (r *MongoAccountRepository) UpdateSecretHash(ctx context.Context, email, secretHash string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"password": secretHash, "updated_at": time.Now().UTC().Unix()}},
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *MongoAccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	opts := options.Find().
		SetProjection(bson.M{"password": 0}).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoAccount
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}

	accounts := make([]domain.Account, 0, len(docs))
	for _, d := range docs {
		a := toDomain(d)
		a.SecretHash = ""
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func (r *MongoAccountRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("delete accounts: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *MongoAccountRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}

// duplicateIdentity reads the index name out of the server's E11000 message.
func duplicateIdentity(err error) error {
	msg := err.Error()
	var we mongo.WriteException
	if errors.As(err, &we) && len(we.WriteErrors) > 0 {
		msg = we.WriteErrors[0].Message
	}
	switch {
	case strings.Contains(msg, emailIndex):
		return &domain.DuplicateIdentityError{Field: domain.FieldEmail}
	case strings.Contains(msg, mobileIndex):
		return &domain.DuplicateIdentityError{Field: domain.FieldMobile}
	default:
		return &domain.DuplicateIdentityError{}
	}
}

func toDomain(doc mongoAccount) domain.Account {
	return domain.Account{
		ID:         doc.ID.Hex(),
		Name:       doc.Name,
		Email:      doc.Email,
		SecretHash: doc.Password,
		Mobile:     doc.Mobile,
		Role:       doc.Role,
		CreatedAt:  unixToTime(doc.CreatedAt),
		UpdatedAt:  unixToTime(doc.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
