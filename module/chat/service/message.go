package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	chatmodel "VConnct/module/chat/model"
	usermodel "VConnct/module/user/model"
	userservice "VConnct/module/user/service"
	"VConnct/service/gateway"
	"VConnct/service/media"
	"VConnct/service/natsx"
	errs "VConnct/tools/errs"
	"VConnct/tools/ids"
	"VConnct/tools/safe"
)

var ErrEmptyMessage = errs.NewCodeError(40010, "Cannot send an empty message")

// Deliverer pushes an event to a user's active realtime connection, if any.
// Satisfied by *gateway.Gateway; delivery is best-effort and must never fail
// a request that already persisted.
type Deliverer interface {
	Deliver(userID string, event any)
}

// Service owns conversations and messages.
type Service struct {
	convs    *mongo.Collection
	msgs     *mongo.Collection
	users    *userservice.Service
	uploader media.Uploader
	gw       Deliverer
	bus      *natsx.Client
}

func New(db *mongo.Database, users *userservice.Service, uploader media.Uploader, gw Deliverer, bus *natsx.Client) *Service {
	return &Service{
		convs:    db.Collection(chatmodel.CollConversation),
		msgs:     db.Collection(chatmodel.CollMessage),
		users:    users,
		uploader: uploader,
		gw:       gw,
		bus:      bus,
	}
}

func (s *Service) Contacts(ctx context.Context, selfID string) ([]usermodel.Contact, error) {
	return s.users.ListContacts(ctx, selfID)
}

// findConversation returns (nil, nil) when the two users have no thread yet.
func (s *Service) findConversation(ctx context.Context, a, b string) (*chatmodel.Conversation, error) {
	conv := &chatmodel.Conversation{}
	err := s.convs.FindOne(ctx, bson.M{"participants": bson.M{"$all": []string{a, b}}}).Decode(conv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find conversation")
	}
	return conv, nil
}

// ConversationByID returns (nil, nil) when absent.
func (s *Service) ConversationByID(ctx context.Context, id string) (*chatmodel.Conversation, error) {
	conv := &chatmodel.Conversation{}
	err := s.convs.FindOne(ctx, bson.M{"_id": id}).Decode(conv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find conversation by id")
	}
	return conv, nil
}

// Messages lists the thread between the caller and otherID, oldest first.
// No thread yet means an empty list, not an error.
func (s *Service) Messages(ctx context.Context, selfID, otherID string) ([]chatmodel.Message, error) {
	conv, err := s.findConversation(ctx, selfID, otherID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return []chatmodel.Message{}, nil
	}
	return s.MessagesByConversation(ctx, conv.ID)
}

// MessagesByConversation loads all messages of a thread with sender contacts
// attached.
func (s *Service) MessagesByConversation(ctx context.Context, conversationID string) ([]chatmodel.Message, error) {
	cur, err := s.msgs.Find(ctx, bson.M{"conversation_id": conversationID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "list messages")
	}
	defer cur.Close(ctx)

	msgs := make([]chatmodel.Message, 0)
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, errors.Wrap(err, "decode messages")
	}
	if err := s.attachSenders(ctx, msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *Service) attachSenders(ctx context.Context, msgs []chatmodel.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	seen := make(map[string]struct{})
	senderIDs := make([]string, 0)
	for i := range msgs {
		if _, ok := seen[msgs[i].SenderID]; !ok {
			seen[msgs[i].SenderID] = struct{}{}
			senderIDs = append(senderIDs, msgs[i].SenderID)
		}
	}
	contacts, err := s.users.ContactsByID(ctx, senderIDs)
	if err != nil {
		return err
	}
	for i := range msgs {
		if ct, ok := contacts[msgs[i].SenderID]; ok {
			c := ct
			msgs[i].Sender = &c
		}
	}
	return nil
}

// Send persists a message (creating the thread on first contact), then
// fans out: realtime delivery to the recipient and a persisted-message event
// on the bus. Both are fire-and-forget; the caller's response only depends
// on the store write.
func (s *Service) Send(ctx context.Context, senderID, receiverID, text string, image []byte, imageType string) (*chatmodel.Message, error) {
	if text == "" && len(image) == 0 {
		return nil, ErrEmptyMessage
	}

	imageURL := ""
	if len(image) > 0 {
		url, err := s.uploader.Upload(ctx, image, imageType)
		if err != nil {
			return nil, err
		}
		imageURL = url
	}

	now := time.Now().UTC()

	conv, err := s.findConversation(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		conv = &chatmodel.Conversation{
			ID:           ids.GenerateString(),
			Participants: []string{senderID, receiverID},
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if _, err := s.convs.InsertOne(ctx, conv); err != nil {
			return nil, errors.Wrap(err, "create conversation")
		}
	}

	msg := &chatmodel.Message{
		ID:             ids.GenerateString(),
		ConversationID: conv.ID,
		SenderID:       senderID,
		Text:           text,
		Image:          imageURL,
		CreatedAt:      now,
	}
	if _, err := s.msgs.InsertOne(ctx, msg); err != nil {
		return nil, errors.Wrap(err, "insert message")
	}
	_, _ = s.convs.UpdateOne(ctx, bson.M{"_id": conv.ID}, bson.M{"$set": bson.M{"updated_at": now}})

	if contacts, err := s.users.ContactsByID(ctx, []string{senderID}); err == nil {
		if ct, ok := contacts[senderID]; ok {
			c := ct
			msg.Sender = &c
		}
	}

	// message is durable from here on; realtime/bus failures stay non-fatal
	s.gw.Deliver(receiverID, gateway.NewMessage(msg))
	safe.Go(func() {
		s.bus.PublishJSON(natsx.SubjectMessagePersisted, msg)
	})

	return msg, nil
}

// Conversations builds the caller's inbox, newest activity first.
func (s *Service) Conversations(ctx context.Context, selfID string) ([]chatmodel.ConversationSummary, error) {
	cur, err := s.convs.Find(ctx, bson.M{"participants": selfID},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "list conversations")
	}
	defer cur.Close(ctx)

	convs := make([]chatmodel.Conversation, 0)
	if err := cur.All(ctx, &convs); err != nil {
		return nil, errors.Wrap(err, "decode conversations")
	}

	otherIDs := make([]string, 0, len(convs))
	for _, conv := range convs {
		for _, p := range conv.Participants {
			if p != selfID {
				otherIDs = append(otherIDs, p)
			}
		}
	}
	contacts, err := s.users.ContactsByID(ctx, otherIDs)
	if err != nil {
		return nil, err
	}

	out := make([]chatmodel.ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		summary := chatmodel.ConversationSummary{ConversationID: conv.ID}
		for _, p := range conv.Participants {
			if p != selfID {
				if ct, ok := contacts[p]; ok {
					c := ct
					summary.OtherParticipant = &c
				}
			}
		}

		last := &chatmodel.Message{}
		err := s.msgs.FindOne(ctx, bson.M{"conversation_id": conv.ID},
			options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})).Decode(last)
		switch {
		case err == nil:
			summary.LastMessage = last
		case errors.Is(err, mongo.ErrNoDocuments):
			// thread created but nothing sent yet
		default:
			return nil, errors.Wrap(err, "load last message")
		}
		out = append(out, summary)
	}
	return out, nil
}

// IsParticipant reports whether userID belongs to the conversation.
func (s *Service) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	conv, err := s.ConversationByID(ctx, conversationID)
	if err != nil || conv == nil {
		return false, err
	}
	for _, p := range conv.Participants {
		if p == userID {
			return true, nil
		}
	}
	return false, nil
}
