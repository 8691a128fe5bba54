package repository

import (
	"context"

	"userdirectory/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoDatabase = "userdirectory"

type MongoUserRepo struct {
	DB *mongo.Client
}

// NewMongoUserRepo ensures the unique email index exists before returning.
// Mongo has no auto-increment, so ids come from a counters collection.
func NewMongoUserRepo(db *mongo.Client) (*MongoUserRepo, error) {
	r := &MongoUserRepo{DB: db}
	_, err := r.users().Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *MongoUserRepo) users() *mongo.Collection {
	return r.DB.Database(mongoDatabase).Collection("users")
}

func (r *MongoUserRepo) nextID(ctx context.Context) (int64, error) {
	counters := r.DB.Database(mongoDatabase).Collection("counters")
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "users"},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	return doc.Seq, err
}

type mongoUser struct {
	ID               int64  `bson:"_id"`
	Name             string `bson:"name"`
	Email            string `bson:"email"`
	PasswordHash     string `bson:"password_hash"`
	ProfileImagePath string `bson:"profile_image_path,omitempty"`
}

func toMongo(u *models.User) mongoUser {
	return mongoUser{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		PasswordHash:     u.PasswordHash,
		ProfileImagePath: u.ProfileImagePath,
	}
}

func fromMongo(m mongoUser) *models.User {
	return &models.User{
		ID:               m.ID,
		Name:             m.Name,
		Email:            m.Email,
		PasswordHash:     m.PasswordHash,
		ProfileImagePath: m.ProfileImagePath,
	}
}

func (r *MongoUserRepo) GetAll() ([]*models.User, error) {
	ctx := context.Background()
	cur, err := r.users().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []*models.User
	for cur.Next(ctx) {
		var doc mongoUser
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		users = append(users, fromMongo(doc))
	}
	return users, cur.Err()
}

func (r *MongoUserRepo) GetByID(id int64) (*models.User, error) {
	return r.getOne(bson.M{"_id": id})
}

func (r *MongoUserRepo) GetByEmail(email string) (*models.User, error) {
	return r.getOne(bson.M{"email": email})
}

func (r *MongoUserRepo) EmailTaken(email string, excludeID int64) (bool, error) {
	n, err := r.users().CountDocuments(context.Background(),
		bson.M{"email": email, "_id": bson.M{"$ne": excludeID}})
	return n > 0, err
}

func (r *MongoUserRepo) Create(user *models.User) error {
	ctx := context.Background()
	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}
	user.ID = id

	_, err = r.users().InsertOne(ctx, toMongo(user))
	if mongo.IsDuplicateKeyError(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *MongoUserRepo) Update(user *models.User) error {
	_, err := r.users().ReplaceOne(context.Background(),
		bson.M{"_id": user.ID}, toMongo(user))
	if mongo.IsDuplicateKeyError(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *MongoUserRepo) Delete(id int64) (bool, error) {
	res, err := r.users().DeleteOne(context.Background(), bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoUserRepo) getOne(filter bson.M) (*models.User, error) {
	var doc mongoUser
	err := r.users().FindOne(context.Background(), filter).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return fromMongo(doc), nil
}
