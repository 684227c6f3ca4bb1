package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/heimu09/ApartXCleaning/internal/domain"
)

const (
	indexEmail = "email-index"
	indexPhone = "phone-index"

	uniqueEmail = "email"
	uniquePhone = "phone"
)

// UserRepo provides typed DynamoDB operations for the users table. Email and
// phone uniqueness is enforced through marker items in a companion table.
type UserRepo struct {
	client       API
	tableName    string
	uniquesTable string
	now          func() time.Time
}

func NewUserRepo(client API, tableName, uniquesTable string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName, uniquesTable: uniquesTable, now: time.Now}
}

// Create writes u together with its email and phone markers in one
// transaction. If either value is already claimed nothing is written and
// ErrDuplicateEmail or ErrDuplicatePhone is returned.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	now := r.now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	notExists := func(attr string) *string {
		return aws.String(fmt.Sprintf("attribute_not_exists(%s)", attr))
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{TableName: aws.String(r.tableName), Item: item, ConditionExpression: notExists(fieldUserID)}},
			{Put: &types.Put{TableName: aws.String(r.uniquesTable), Item: uniqueMarker(uniqueEmail, u.Email, u.UserID), ConditionExpression: notExists(fieldUniqueKey)}},
			{Put: &types.Put{TableName: aws.String(r.uniquesTable), Item: uniqueMarker(uniquePhone, u.PhoneNumber, u.UserID), ConditionExpression: notExists(fieldUniqueKey)}},
		},
	})
	if err == nil {
		return nil
	}
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		for i, reason := range tce.CancellationReasons {
			if aws.ToString(reason.Code) != "ConditionalCheckFailed" {
				continue
			}
			switch i {
			case 0:
				return fmt.Errorf("user id %s taken: %w", u.UserID, domain.ErrConflict)
			case 1:
				return domain.ErrDuplicateEmail
			case 2:
				return domain.ErrDuplicatePhone
			}
		}
	}
	return fmt.Errorf("create user: %w", err)
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldUserID, userID),
	})
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.queryGSI(ctx, indexEmail, fieldEmail, email)
}

func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.queryGSI(ctx, indexPhone, fieldPhoneNumber, phone)
}

// UpdateRole sets the role of a user who has none yet. A user that already
// has a role yields ErrConflict; an unknown user yields ErrNotFound.
func (r *UserRepo) UpdateRole(ctx context.Context, userID, role string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldRole:      role,
		fieldUpdatedAt: r.now().UTC(),
	})
	if err != nil {
		return err
	}
	ue.Names["#pk"] = fieldUserID
	ue.Names["#cur"] = fieldRole
	ue.Values[":empty"] = &types.AttributeValueMemberS{Value: ""}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                           aws.String(r.tableName),
		Key:                                 strKey(fieldUserID, userID),
		UpdateExpression:                    aws.String(ue.Expr),
		ConditionExpression:                 aws.String("attribute_exists(#pk) AND (attribute_not_exists(#cur) OR #cur = :empty)"),
		ExpressionAttributeNames:            ue.Names,
		ExpressionAttributeValues:           ue.Values,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err == nil {
		return nil
	}
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		if len(ccf.Item) == 0 {
			return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
		}
		return fmt.Errorf("role already selected: %w", domain.ErrConflict)
	}
	return fmt.Errorf("update role: %w", err)
}

func (r *UserRepo) queryGSI(ctx context.Context, index, attr, value string) (*domain.User, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", index, err)
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("user with %s %q: %w", attr, value, domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Items[0], &u); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &u, nil
}
