package dynamo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/heimu09/ApartXCleaning/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAPI struct{ mock.Mock }

func (m *mockAPI) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, in)
	if out, _ := args.Get(0).(*dynamodb.GetItemOutput); out != nil {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAPI) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	args := m.Called(ctx, in)
	if out, _ := args.Get(0).(*dynamodb.QueryOutput); out != nil {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAPI) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	args := m.Called(ctx, in)
	if out, _ := args.Get(0).(*dynamodb.UpdateItemOutput); out != nil {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAPI) TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	args := m.Called(ctx, in)
	if out, _ := args.Get(0).(*dynamodb.TransactWriteItemsOutput); out != nil {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestRepo(api *mockAPI) *UserRepo {
	r := NewUserRepo(api, "users", "user_uniques")
	r.now = func() time.Time { return fixedNow }
	return r
}

func cancelled(codes ...string) error {
	reasons := make([]types.CancellationReason, len(codes))
	for i, c := range codes {
		reasons[i] = types.CancellationReason{Code: aws.String(c)}
	}
	return &types.TransactionCanceledException{CancellationReasons: reasons}
}

func TestCreate_WritesUserAndMarkersInOneTransaction(t *testing.T) {
	api := &mockAPI{}
	var got *dynamodb.TransactWriteItemsInput
	api.On("TransactWriteItems", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(1).(*dynamodb.TransactWriteItemsInput) }).
		Return(&dynamodb.TransactWriteItemsOutput{}, nil)

	u := &domain.User{UserID: "u1", Email: "a@b.com", PhoneNumber: "+15551234567"}
	require.NoError(t, newTestRepo(api).Create(context.Background(), u))

	require.Len(t, got.TransactItems, 3)
	assert.Equal(t, "users", aws.ToString(got.TransactItems[0].Put.TableName))
	assert.Equal(t, "user_uniques", aws.ToString(got.TransactItems[1].Put.TableName))
	assert.Equal(t, &types.AttributeValueMemberS{Value: "email#a@b.com"}, got.TransactItems[1].Put.Item["unique_key"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "phone#+15551234567"}, got.TransactItems[2].Put.Item["unique_key"])
	for _, it := range got.TransactItems {
		assert.Contains(t, aws.ToString(it.Put.ConditionExpression), "attribute_not_exists")
	}
	assert.Equal(t, fixedNow, u.CreatedAt)
}

func TestCreate_MapsCancellationReasons(t *testing.T) {
	cases := []struct {
		name  string
		codes []string
		want  error
	}{
		{"email taken", []string{"None", "ConditionalCheckFailed", "None"}, domain.ErrDuplicateEmail},
		{"phone taken", []string{"None", "None", "ConditionalCheckFailed"}, domain.ErrDuplicatePhone},
		{"both taken reports email", []string{"None", "ConditionalCheckFailed", "ConditionalCheckFailed"}, domain.ErrDuplicateEmail},
		{"id taken", []string{"ConditionalCheckFailed", "None", "None"}, domain.ErrConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &mockAPI{}
			api.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, cancelled(tc.codes...))
			err := newTestRepo(api).Create(context.Background(), &domain.User{UserID: "u1", Email: "a@b.com", PhoneNumber: "+1"})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreate_OtherErrorIsWrapped(t *testing.T) {
	api := &mockAPI{}
	api.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))
	err := newTestRepo(api).Create(context.Background(), &domain.User{UserID: "u1"})
	assert.ErrorContains(t, err, "create user: throttled")
	assert.False(t, errors.Is(err, domain.ErrDuplicateEmail))
}

func TestGet_NotFound(t *testing.T) {
	api := &mockAPI{}
	api.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)
	_, err := newTestRepo(api).Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetByEmail_QueriesIndex(t *testing.T) {
	api := &mockAPI{}
	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return aws.ToString(in.IndexName) == "email-index" && in.ExpressionAttributeNames["#a"] == "email"
	})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{{
		"user_id": &types.AttributeValueMemberS{Value: "u1"},
		"email":   &types.AttributeValueMemberS{Value: "a@b.com"},
	}}}, nil)

	u, err := newTestRepo(api).GetByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.UserID)
	api.AssertExpectations(t)
}

func TestGetByPhone_NotFound(t *testing.T) {
	api := &mockAPI{}
	api.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{}, nil)
	_, err := newTestRepo(api).GetByPhone(context.Background(), "+15550000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateRole_ConditionFailures(t *testing.T) {
	t.Run("already selected", func(t *testing.T) {
		api := &mockAPI{}
		api.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{
			Item: map[string]types.AttributeValue{"role": &types.AttributeValueMemberS{Value: "customer"}},
		})
		err := newTestRepo(api).UpdateRole(context.Background(), "u1", "executor")
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
	t.Run("unknown user", func(t *testing.T) {
		api := &mockAPI{}
		api.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})
		err := newTestRepo(api).UpdateRole(context.Background(), "ghost", "executor")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestUpdateRole_SetsRoleConditionally(t *testing.T) {
	api := &mockAPI{}
	var got *dynamodb.UpdateItemInput
	api.On("UpdateItem", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(1).(*dynamodb.UpdateItemInput) }).
		Return(&dynamodb.UpdateItemOutput{}, nil)

	require.NoError(t, newTestRepo(api).UpdateRole(context.Background(), "u1", "customer"))
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1", aws.ToString(got.UpdateExpression))
	assert.Equal(t, "role", got.ExpressionAttributeNames["#f0"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "customer"}, got.ExpressionAttributeValues[":v0"])
	assert.Contains(t, aws.ToString(got.ConditionExpression), "attribute_not_exists(#cur)")
}
