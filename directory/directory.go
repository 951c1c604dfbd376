// Package directory provides the property directory: CRUD over the hosted
// document database for rental properties and call-to-action button
// configurations. Reads are defensive — every document is normalized field by
// field at the read boundary so a malformed document can never break a caller —
// and listing degrades to an empty slice on any read failure or timeout.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/moanarentals/moana/domain"
)

// DefaultReadTimeout bounds every listing read. A read that has not completed
// by the deadline is abandoned and the listing degrades to an empty slice.
const DefaultReadTimeout = 15 * time.Second

const (
	propertiesCollection = "properties"
	buttonsCollection    = "buttonConfigs"
)

// collection is the thin surface the directory consumes from the document
// store driver. Find returns fully decoded documents so test doubles do not
// need to fake driver cursors.
type collection interface {
	Find(ctx context.Context, filter any, opts ...*options.FindOptions) ([]bson.M, error)
	InsertOne(ctx context.Context, document any) (primitive.ObjectID, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, update any) (int64, error)
	DeleteOne(ctx context.Context, filter any) error
}

// mongoCollection adapts a *mongo.Collection to the collection interface.
type mongoCollection struct {
	col *mongo.Collection
}

func (m mongoCollection) Find(ctx context.Context, filter any, opts ...*options.FindOptions) ([]bson.M, error) {
	cursor, err := m.col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (m mongoCollection) InsertOne(ctx context.Context, document any) (primitive.ObjectID, error) {
	result, err := m.col.InsertOne(ctx, document)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return id, nil
}

func (m mongoCollection) UpdateByID(ctx context.Context, id primitive.ObjectID, update any) (int64, error) {
	result, err := m.col.UpdateByID(ctx, id, update)
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}

func (m mongoCollection) DeleteOne(ctx context.Context, filter any) error {
	_, err := m.col.DeleteOne(ctx, filter)
	return err
}

// Client is the property directory over the hosted document database.
// It performs no validation: callers own input rules, the directory owns
// persistence and read-boundary normalization.
type Client struct {
	properties  collection
	buttons     collection
	readTimeout time.Duration
	now         func() time.Time
}

// New creates a directory client over the given database and applies any
// provided options.
func New(database *mongo.Database, options ...func(*Client) error) (*Client, error) {
	client := &Client{
		readTimeout: DefaultReadTimeout,
		now:         time.Now,
	}
	if database != nil {
		client.properties = mongoCollection{col: database.Collection(propertiesCollection)}
		client.buttons = mongoCollection{col: database.Collection(buttonsCollection)}
	}
	for _, option := range options {
		err := option(client)
		if err != nil {
			return nil, fmt.Errorf("applying option on directory client : %w", err)
		}
	}
	if client.properties == nil || client.buttons == nil {
		return nil, errors.New("directory client has no collections configured")
	}
	return client, nil
}

// WithReadTimeout overrides the listing read deadline.
func WithReadTimeout(timeout time.Duration) func(*Client) error {
	return func(client *Client) error {
		if timeout <= 0 {
			return errors.New("read timeout must be positive")
		}
		client.readTimeout = timeout
		return nil
	}
}

// WithClock overrides the clock used for document timestamps.
func WithClock(now func() time.Time) func(*Client) error {
	return func(client *Client) error {
		if now == nil {
			return errors.New("clock must not be nil")
		}
		client.now = now
		return nil
	}
}

// CreateProperty inserts a new property document. Both timestamps are stamped
// server-side and the generated document id is returned on the property.
// Inputs are persisted as provided — validation is the caller's concern.
func (client *Client) CreateProperty(ctx context.Context, form domain.PropertyForm) (*domain.Property, error) {
	now := client.now()
	doc := bson.M{
		"title":       form.Title,
		"address":     form.Address,
		"price":       form.Price,
		"type":        form.Type,
		"bedrooms":    form.Bedrooms,
		"bathrooms":   form.Bathrooms,
		"parking":     form.Parking,
		"image":       form.Image,
		"images":      form.Images,
		"description": form.Description,
		"available":   form.Available,
		"features":    form.Features,
		"buttonLink":  form.ButtonLink,
		"createdAt":   now,
		"updatedAt":   now,
	}

	id, err := client.properties.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: inserting property : %w", ErrStoreWrite, err)
	}

	property := normalizeProperty(doc)
	property.ID = id.Hex()
	return &property, nil
}

// Properties lists every property, newest first. Any read failure — including
// a deadline hit — degrades to an empty slice so listing callers always render.
func (client *Client) Properties(ctx context.Context) []domain.Property {
	ctx, cancel := context.WithTimeout(ctx, client.readTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	docs, err := client.properties.Find(ctx, bson.M{}, opts)
	if err != nil {
		log.Print(readErr("listing properties", err))
		return []domain.Property{}
	}

	properties := make([]domain.Property, 0, len(docs))
	for _, doc := range docs {
		properties = append(properties, normalizeProperty(doc))
	}
	return properties
}

// UpdateProperty merges the supplied fields into an existing document and
// refreshes updatedAt. Fields the caller did not provide are left exactly as
// stored. Updating a document that does not exist is a write failure.
func (client *Client) UpdateProperty(ctx context.Context, id string, patch domain.PropertyPatch) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: parsing property id %s : %w", ErrStoreWrite, id, err)
	}

	set := bson.M{"updatedAt": client.now()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Address != nil {
		set["address"] = *patch.Address
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Type != nil {
		set["type"] = *patch.Type
	}
	if patch.Bedrooms != nil {
		set["bedrooms"] = *patch.Bedrooms
	}
	if patch.Bathrooms != nil {
		set["bathrooms"] = *patch.Bathrooms
	}
	if patch.Parking != nil {
		set["parking"] = *patch.Parking
	}
	if patch.Image != nil {
		set["image"] = *patch.Image
	}
	if patch.Images != nil {
		set["images"] = *patch.Images
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Available != nil {
		set["available"] = *patch.Available
	}
	if patch.Features != nil {
		set["features"] = *patch.Features
	}
	if patch.ButtonLink != nil {
		set["buttonLink"] = *patch.ButtonLink
	}

	matched, err := client.properties.UpdateByID(ctx, objectID, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("%w: updating property %s : %w", ErrStoreWrite, id, err)
	}
	if matched == 0 {
		return fmt.Errorf("%w: updating property %s : no such document", ErrStoreWrite, id)
	}
	return nil
}

// DeleteProperty removes a property document. Deleting a document that is
// already gone succeeds.
func (client *Client) DeleteProperty(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: parsing property id %s : %w", ErrStoreWrite, id, err)
	}
	if err := client.properties.DeleteOne(ctx, bson.M{"_id": objectID}); err != nil {
		return fmt.Errorf("%w: deleting property %s : %w", ErrStoreWrite, id, err)
	}
	return nil
}
