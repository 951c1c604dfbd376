package directory

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/moanarentals/moana/domain"
)

// CreateButton inserts a new call-to-action button configuration.
// New buttons always start active.
func (client *Client) CreateButton(ctx context.Context, form domain.ButtonForm) (*domain.ButtonConfig, error) {
	now := client.now()
	doc := bson.M{
		"name":        form.Name,
		"link":        form.Link,
		"description": form.Description,
		"isActive":    true,
		"createdAt":   now,
		"updatedAt":   now,
	}

	id, err := client.buttons.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: inserting button : %w", ErrStoreWrite, err)
	}

	button := normalizeButton(doc)
	button.ID = id.Hex()
	return &button, nil
}

// Buttons lists every button configuration, oldest first. Read failures
// degrade to an empty slice, same as property listing.
func (client *Client) Buttons(ctx context.Context) []domain.ButtonConfig {
	ctx, cancel := context.WithTimeout(ctx, client.readTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	docs, err := client.buttons.Find(ctx, bson.M{}, opts)
	if err != nil {
		log.Print(readErr("listing buttons", err))
		return []domain.ButtonConfig{}
	}

	buttons := make([]domain.ButtonConfig, 0, len(docs))
	for _, doc := range docs {
		buttons = append(buttons, normalizeButton(doc))
	}
	return buttons
}

// ActiveButtons lists only the buttons currently toggled on, oldest first.
func (client *Client) ActiveButtons(ctx context.Context) []domain.ButtonConfig {
	buttons := client.Buttons(ctx)
	active := make([]domain.ButtonConfig, 0, len(buttons))
	for _, button := range buttons {
		if button.IsActive {
			active = append(active, button)
		}
	}
	return active
}

// UpdateButton merges the supplied fields into an existing button and
// refreshes updatedAt. Nil patch fields are left as stored.
func (client *Client) UpdateButton(ctx context.Context, id string, patch domain.ButtonPatch) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: parsing button id %s : %w", ErrStoreWrite, id, err)
	}

	set := bson.M{"updatedAt": client.now()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Link != nil {
		set["link"] = *patch.Link
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}

	matched, err := client.buttons.UpdateByID(ctx, objectID, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("%w: updating button %s : %w", ErrStoreWrite, id, err)
	}
	if matched == 0 {
		return fmt.Errorf("%w: updating button %s : no such document", ErrStoreWrite, id)
	}
	return nil
}

// ToggleButton flips a button's active flag to the given state.
func (client *Client) ToggleButton(ctx context.Context, id string, active bool) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: parsing button id %s : %w", ErrStoreWrite, id, err)
	}

	update := bson.M{"$set": bson.M{
		"isActive":  active,
		"updatedAt": client.now(),
	}}

	matched, err := client.buttons.UpdateByID(ctx, objectID, update)
	if err != nil {
		return fmt.Errorf("%w: toggling button %s : %w", ErrStoreWrite, id, err)
	}
	if matched == 0 {
		return fmt.Errorf("%w: toggling button %s : no such document", ErrStoreWrite, id)
	}
	return nil
}

// DeleteButton removes a button configuration. Deleting a configuration that
// is already gone succeeds.
func (client *Client) DeleteButton(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: parsing button id %s : %w", ErrStoreWrite, id, err)
	}
	if err := client.buttons.DeleteOne(ctx, bson.M{"_id": objectID}); err != nil {
		return fmt.Errorf("%w: deleting button %s : %w", ErrStoreWrite, id, err)
	}
	return nil
}
