package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rpupo63/portfolio-blog-backend/errs"
	"github.com/rpupo63/portfolio-blog-backend/models"
)

type MongoUserRepo struct {
	col *mongo.Collection
}

func NewMongoUserRepo(col *mongo.Collection) *MongoUserRepo {
	return &MongoUserRepo{col: col}
}

func (r *MongoUserRepo) Add(ctx context.Context, user *models.User) error {
	_, err := r.col.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

func (r *MongoUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.col.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, mongoNotFound(err)
	}
	return &user, nil
}

func (r *MongoUserRepo) FindByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	result := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var users []*models.User
	if err := findAll(ctx, r.col, bson.M{"_id": bson.M{"$in": ids}}, nil, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

func (r *MongoUserRepo) FindAll(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	if err := findAll(ctx, r.col, bson.M{}, opts, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *MongoUserRepo) SetRole(ctx context.Context, id string, role models.Role) error {
	return r.update(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"role": role}})
}

func (r *MongoUserRepo) SetOTP(ctx context.Context, id, code string, expiresAt time.Time) error {
	return r.update(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"verifyOtp":         code,
		"verifyOtpExpireAt": expiresAt,
	}})
}

func (r *MongoUserRepo) VerifyAccount(ctx context.Context, id, code string, now time.Time) error {
	return r.update(ctx, otpFilter(id, code, now), bson.M{"$set": bson.M{
		"isAccountVerified": true,
		"verifyOtp":         nil,
		"verifyOtpExpireAt": nil,
	}})
}

func (r *MongoUserRepo) ResetPassword(ctx context.Context, id, code, passwordHash string, now time.Time) error {
	return r.update(ctx, otpFilter(id, code, now), bson.M{"$set": bson.M{
		"password":          passwordHash,
		"verifyOtp":         nil,
		"verifyOtpExpireAt": nil,
	}})
}

func (r *MongoUserRepo) update(ctx context.Context, filter, update bson.M) error {
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// otpFilter matches the user only while code is the stored, unexpired OTP.
func otpFilter(id, code string, now time.Time) bson.M {
	return bson.M{
		"_id":               id,
		"verifyOtp":         code,
		"verifyOtpExpireAt": bson.M{"$gte": now},
	}
}

func mongoNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return errs.ErrNotFound
	}
	return err
}

func findAll(ctx context.Context, col *mongo.Collection, filter interface{}, opts *options.FindOptions, out interface{}) error {
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}
