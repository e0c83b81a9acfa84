package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	appconfig "github.com/handyhub-dev/handyhub-api/config"
	"github.com/handyhub-dev/handyhub-api/models"
)

// Dynamo is the DynamoDB-backed Store.
//
// Table requirements (all PK: id, string):
//   - <prefix>_users, <prefix>_technicians, <prefix>_jobs,
//     <prefix>_ratings, <prefix>_chats, <prefix>_messages
//
// Lookups by non-key fields go through Scan with a filter expression rather
// than secondary indexes; result ordering is always applied by the caller
// after the fetch.
type Dynamo struct {
	client *dynamodb.Client
	cfg    *appconfig.Config
}

// NewDynamo builds a DynamoDB client from the application configuration.
// DYNAMODB_ENDPOINT switches the client to a local instance; local DynamoDB
// does not validate credentials but the SDK still requires them.
func NewDynamo(ctx context.Context, cfg *appconfig.Config) (*Dynamo, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}

	if cfg.AWSAccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	if cfg.DynamoDBEndpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
			if service == dynamodb.ServiceID {
				return aws.Endpoint{URL: cfg.DynamoDBEndpoint, SigningRegion: region, HostnameImmutable: true}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})
		loadOpts = append(loadOpts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Dynamo{client: dynamodb.NewFromConfig(awsCfg), cfg: cfg}, nil
}

func (d *Dynamo) Users() UserStore             { return &dynamoUsers{d} }
func (d *Dynamo) Technicians() TechnicianStore { return &dynamoTechnicians{d} }
func (d *Dynamo) Jobs() JobStore               { return &dynamoJobs{d} }
func (d *Dynamo) Ratings() RatingStore         { return &dynamoRatings{d} }
func (d *Dynamo) Chats() ChatStore             { return &dynamoChats{d} }

func (d *Dynamo) table(entity string) string {
	return d.cfg.TableName(entity)
}

// putItem writes a document. With mustNotExist it fails when a document with
// the same ID is already present.
func (d *Dynamo) putItem(ctx context.Context, table string, item interface{}, mustNotExist bool) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      av,
	}
	if mustNotExist {
		input.ConditionExpression = aws.String("attribute_not_exists(#id)")
		input.ExpressionAttributeNames = map[string]string{"#id": "id"}
	}

	if _, err := d.client.PutItem(ctx, input); err != nil {
		if isConditionFailed(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to put item: %w", err)
	}
	return nil
}

// getItem reads a document by ID into out, returning ErrNotFound when absent.
func (d *Dynamo) getItem(ctx context.Context, table, id string, out interface{}) error {
	res, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(table),
		Key:            map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to get item: %w", err)
	}
	if len(res.Item) == 0 {
		return ErrNotFound
	}
	if err := attributevalue.UnmarshalMap(res.Item, out); err != nil {
		return fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return nil
}

// scan pages through a table, optionally with a filter expression, and
// unmarshals every item into the slice pointed to by out.
func (d *Dynamo) scan(ctx context.Context, table string, filter *string, values map[string]types.AttributeValue, out interface{}) error {
	var items []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue

	for {
		input := &dynamodb.ScanInput{
			TableName:         aws.String(table),
			ExclusiveStartKey: startKey,
		}
		if filter != nil {
			input.FilterExpression = filter
			input.ExpressionAttributeValues = values
		}

		res, err := d.client.Scan(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to scan table %s: %w", table, err)
		}
		items = append(items, res.Items...)

		if res.LastEvaluatedKey == nil {
			break
		}
		startKey = res.LastEvaluatedKey
	}

	if err := attributevalue.UnmarshalListOfMaps(items, out); err != nil {
		return fmt.Errorf("failed to unmarshal items: %w", err)
	}
	return nil
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// --- users ---

type dynamoUsers struct{ d *Dynamo }

func (s *dynamoUsers) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.d.getItem(ctx, s.d.table("users"), id, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *dynamoUsers) Create(ctx context.Context, user *models.User) error {
	return s.d.putItem(ctx, s.d.table("users"), user, true)
}

func (s *dynamoUsers) Update(ctx context.Context, user *models.User) error {
	return s.d.putItem(ctx, s.d.table("users"), user, false)
}

func (s *dynamoUsers) ListAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.d.scan(ctx, s.d.table("users"), nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *dynamoUsers) ListByTechnicianStatus(ctx context.Context, status string) ([]models.User, error) {
	var users []models.User
	filter := aws.String("technician_status = :status")
	values := map[string]types.AttributeValue{
		":status": &types.AttributeValueMemberS{Value: status},
	}
	if err := s.d.scan(ctx, s.d.table("users"), filter, values, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// --- technicians ---

type dynamoTechnicians struct{ d *Dynamo }

func (s *dynamoTechnicians) Get(ctx context.Context, id string) (*models.Technician, error) {
	var tech models.Technician
	if err := s.d.getItem(ctx, s.d.table("technicians"), id, &tech); err != nil {
		return nil, err
	}
	return &tech, nil
}

func (s *dynamoTechnicians) Put(ctx context.Context, tech *models.Technician) error {
	return s.d.putItem(ctx, s.d.table("technicians"), tech, false)
}

func (s *dynamoTechnicians) SetAvailability(ctx context.Context, id string, available bool) error {
	_, err := s.d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.d.table("technicians")),
		Key:                 map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
		UpdateExpression:    aws.String("SET is_available = :avail, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":avail": &types.AttributeValueMemberBOOL{Value: available},
			":now":   &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		if isConditionFailed(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to set availability: %w", err)
	}
	return nil
}

func (s *dynamoTechnicians) UpdateRatingStats(ctx context.Context, id string, expect, next models.RatingStats) error {
	_, err := s.d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.d.table("technicians")),
		Key:                 map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
		UpdateExpression:    aws.String("SET total_reviews = :count, average_rating = :avg, updated_at = :now"),
		ConditionExpression: aws.String("total_reviews = :expectCount AND average_rating = :expectAvg"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":count":       &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", next.TotalReviews)},
			":avg":         &types.AttributeValueMemberN{Value: fmt.Sprintf("%.1f", next.AverageRating)},
			":expectCount": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expect.TotalReviews)},
			":expectAvg":   &types.AttributeValueMemberN{Value: fmt.Sprintf("%.1f", expect.AverageRating)},
			":now":         &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		if isConditionFailed(err) {
			return ErrConditionFailed
		}
		return fmt.Errorf("failed to update rating stats: %w", err)
	}
	return nil
}

func (s *dynamoTechnicians) ListAll(ctx context.Context) ([]models.Technician, error) {
	var techs []models.Technician
	if err := s.d.scan(ctx, s.d.table("technicians"), nil, nil, &techs); err != nil {
		return nil, err
	}
	return techs, nil
}

// --- jobs ---

type dynamoJobs struct{ d *Dynamo }

func (s *dynamoJobs) Create(ctx context.Context, job *models.Job) error {
	return s.d.putItem(ctx, s.d.table("jobs"), job, true)
}

func (s *dynamoJobs) Get(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	if err := s.d.getItem(ctx, s.d.table("jobs"), id, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *dynamoJobs) ListAll(ctx context.Context) ([]models.Job, error) {
	var jobs []models.Job
	if err := s.d.scan(ctx, s.d.table("jobs"), nil, nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *dynamoJobs) ListByCustomer(ctx context.Context, customerID string) ([]models.Job, error) {
	var jobs []models.Job
	filter := aws.String("customer_id = :cid")
	values := map[string]types.AttributeValue{
		":cid": &types.AttributeValueMemberS{Value: customerID},
	}
	if err := s.d.scan(ctx, s.d.table("jobs"), filter, values, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *dynamoJobs) ListByTechnician(ctx context.Context, technicianID string) ([]models.Job, error) {
	var jobs []models.Job
	filter := aws.String("technician_id = :tid")
	values := map[string]types.AttributeValue{
		":tid": &types.AttributeValueMemberS{Value: technicianID},
	}
	if err := s.d.scan(ctx, s.d.table("jobs"), filter, values, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *dynamoJobs) UpdateStatus(ctx context.Context, id string, from, to models.JobStatus, at time.Time) error {
	_, err := s.d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.d.table("jobs")),
		Key:                 map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
		UpdateExpression:    aws.String("SET #status = :to, updated_at = :now"),
		ConditionExpression: aws.String("#status = :from"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":to":   &types.AttributeValueMemberS{Value: string(to)},
			":from": &types.AttributeValueMemberS{Value: string(from)},
			":now":  &types.AttributeValueMemberS{Value: at.UTC().Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		if isConditionFailed(err) {
			return ErrConditionFailed
		}
		return fmt.Errorf("failed to update job status: %w", err)
	}
	return nil
}

// --- ratings ---

type dynamoRatings struct{ d *Dynamo }

func (s *dynamoRatings) Create(ctx context.Context, rating *models.Rating) error {
	return s.d.putItem(ctx, s.d.table("ratings"), rating, true)
}

func (s *dynamoRatings) Get(ctx context.Context, id string) (*models.Rating, error) {
	var rating models.Rating
	if err := s.d.getItem(ctx, s.d.table("ratings"), id, &rating); err != nil {
		return nil, err
	}
	return &rating, nil
}

func (s *dynamoRatings) FindByTechnicianAndCustomer(ctx context.Context, technicianID, customerID string) (*models.Rating, error) {
	var ratings []models.Rating
	filter := aws.String("technician_id = :tid AND customer_id = :cid")
	values := map[string]types.AttributeValue{
		":tid": &types.AttributeValueMemberS{Value: technicianID},
		":cid": &types.AttributeValueMemberS{Value: customerID},
	}
	if err := s.d.scan(ctx, s.d.table("ratings"), filter, values, &ratings); err != nil {
		return nil, err
	}
	if len(ratings) == 0 {
		return nil, ErrNotFound
	}
	return &ratings[0], nil
}

func (s *dynamoRatings) ListByTechnician(ctx context.Context, technicianID string) ([]models.Rating, error) {
	var ratings []models.Rating
	filter := aws.String("technician_id = :tid")
	values := map[string]types.AttributeValue{
		":tid": &types.AttributeValueMemberS{Value: technicianID},
	}
	if err := s.d.scan(ctx, s.d.table("ratings"), filter, values, &ratings); err != nil {
		return nil, err
	}
	return ratings, nil
}

func (s *dynamoRatings) Update(ctx context.Context, rating *models.Rating) error {
	return s.d.putItem(ctx, s.d.table("ratings"), rating, false)
}

func (s *dynamoRatings) Delete(ctx context.Context, id string) error {
	_, err := s.d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.d.table("ratings")),
		Key:       map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
	})
	if err != nil {
		return fmt.Errorf("failed to delete rating: %w", err)
	}
	return nil
}

// --- chats ---

type dynamoChats struct{ d *Dynamo }

func (s *dynamoChats) Create(ctx context.Context, chat *models.Chat) error {
	return s.d.putItem(ctx, s.d.table("chats"), chat, true)
}

func (s *dynamoChats) Get(ctx context.Context, id string) (*models.Chat, error) {
	var chat models.Chat
	if err := s.d.getItem(ctx, s.d.table("chats"), id, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (s *dynamoChats) ListByParticipant(ctx context.Context, userID string) ([]models.Chat, error) {
	var chats []models.Chat
	filter := aws.String("contains(participants, :uid)")
	values := map[string]types.AttributeValue{
		":uid": &types.AttributeValueMemberS{Value: userID},
	}
	if err := s.d.scan(ctx, s.d.table("chats"), filter, values, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (s *dynamoChats) Update(ctx context.Context, chat *models.Chat) error {
	return s.d.putItem(ctx, s.d.table("chats"), chat, false)
}

func (s *dynamoChats) AddMessage(ctx context.Context, msg *models.ChatMessage) error {
	return s.d.putItem(ctx, s.d.table("messages"), msg, true)
}

func (s *dynamoChats) ListMessages(ctx context.Context, chatID string) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	filter := aws.String("chat_id = :cid")
	values := map[string]types.AttributeValue{
		":cid": &types.AttributeValueMemberS{Value: chatID},
	}
	if err := s.d.scan(ctx, s.d.table("messages"), filter, values, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}
