package applications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	apperrors "github.com/devops863/kaizen-sourcing/internal/common/errors"
	"github.com/devops863/kaizen-sourcing/internal/common/logger"
	"github.com/devops863/kaizen-sourcing/internal/common/observability"
	"github.com/devops863/kaizen-sourcing/internal/common/validation"
	"github.com/devops863/kaizen-sourcing/internal/models"
	"github.com/devops863/kaizen-sourcing/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedSubmission struct {
	status string
}

type fakeRecorder struct {
	records []recordedSubmission
}

func (f *fakeRecorder) RecordSubmission(_ context.Context, status string, _ time.Duration) {
	f.records = append(f.records, recordedSubmission{status: status})
}

type fakeNotifier struct {
	calls  int
	ctxErr error
	err    error
}

func (f *fakeNotifier) Notify(ctx context.Context, app *models.Application) (*notifications.Result, error) {
	f.calls++
	f.ctxErr = ctx.Err()
	if f.err != nil {
		return &notifications.Result{Status: notifications.StatusFailed, Failed: []string{notifications.ChannelEmail}}, f.err
	}
	return &notifications.Result{Status: notifications.StatusSent, EmailSent: true}, nil
}

func validPayload() map[string]interface{} {
	return map[string]interface{}{
		"firstName": "Jane", "lastName": "Doe", "dob": "1990-01-01",
		"niNumber": "QQ123456C", "email": "jane@example.com",
		"contactNumber": "07700900123", "address": "High St",
		"houseNumber": "1", "postcode": "AB1 2CD",
		"agencyRegistration": "New", "startDate": "2024-06-01",
		"jobTitle": "Carpenter", "agencyCompany": "Kaizen Sourcing",
		"payRate": "18", "residence": "Citizen", "documents": []string{},
		"bankName": "Bank", "accountName": "J Doe",
		"accountNumber": "12345678", "sortCode": "12-34-56",
		"employeeType": "PAYE", "consentTransactional": true,
		"consentMarketing": false,
	}
}

func encode(t *testing.T, payload map[string]interface{}) []byte {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return body
}

func TestService_CreateApplication(t *testing.T) {
	store := &memoryStore{}
	recorder := &fakeRecorder{}
	notifier := &fakeNotifier{}
	svc := NewService(store, logger.NewTestLogger(t), WithRecorder(recorder), WithNotifier(notifier))

	app, err := svc.CreateApplication(context.Background(), encode(t, validPayload()))
	require.NoError(t, err)

	assert.Equal(t, int64(1), app.ID)
	assert.False(t, app.CreatedAt.IsZero())
	assert.Equal(t, "Jane", app.FirstName)
	assert.Equal(t, "Kaizen Sourcing", app.AgencyCompany)
	assert.True(t, app.ConsentTransactional)
	assert.Equal(t, 1, store.creates)
	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, []recordedSubmission{{status: observability.StatusCreated}}, recorder.records)
}

func TestService_CreateApplicationOptionalFields(t *testing.T) {
	store := &memoryStore{}
	svc := NewService(store, logger.NewNoOpLogger())

	payload := validPayload()
	delete(payload, "documents")
	delete(payload, "consentMarketing")
	payload["description"] = nil
	payload["timeScale"] = "Immediate"

	app, err := svc.CreateApplication(context.Background(), encode(t, payload))
	require.NoError(t, err)

	assert.Equal(t, []string{}, app.Documents)
	assert.False(t, app.ConsentMarketing)
	assert.Nil(t, app.Description)
	require.NotNil(t, app.TimeScale)
	assert.Equal(t, "Immediate", *app.TimeScale)
}

func TestService_CreateApplicationRejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]interface{})
		field  string
		code   string
	}{
		{
			name:   "transactional consent withheld",
			mutate: func(p map[string]interface{}) { p["consentTransactional"] = false },
			field:  "consentTransactional",
			code:   validation.CodeInvalidValue,
		},
		{
			name:   "malformed email",
			mutate: func(p map[string]interface{}) { p["email"] = "not-an-email" },
			field:  "email",
			code:   validation.CodeInvalidFormat,
		},
		{
			name:   "missing sort code",
			mutate: func(p map[string]interface{}) { delete(p, "sortCode") },
			field:  "sortCode",
			code:   validation.CodeRequiredFieldMissing,
		},
		{
			name:   "client supplied id",
			mutate: func(p map[string]interface{}) { p["id"] = 5 },
			field:  "id",
			code:   validation.CodeExtraField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryStore{}
			recorder := &fakeRecorder{}
			svc := NewService(store, logger.NewNoOpLogger(), WithRecorder(recorder))

			payload := validPayload()
			tt.mutate(payload)

			app, err := svc.CreateApplication(context.Background(), encode(t, payload))
			assert.Nil(t, app)

			var stdErr *apperrors.StandardError
			require.True(t, errors.As(err, &stdErr))
			assert.Equal(t, apperrors.ErrCodeApplicationValidationFailed, stdErr.Code)

			var found bool
			for _, fe := range stdErr.Errors {
				if fe.Field == tt.field && fe.Code == tt.code {
					found = true
				}
			}
			assert.True(t, found, "expected %s on %s, got %+v", tt.code, tt.field, stdErr.Errors)
			assert.Zero(t, store.creates)
			assert.Equal(t, []recordedSubmission{{status: observability.StatusRejected}}, recorder.records)
		})
	}
}

func TestService_CreateApplicationMalformedJSON(t *testing.T) {
	store := &memoryStore{}
	svc := NewService(store, logger.NewNoOpLogger())

	_, err := svc.CreateApplication(context.Background(), []byte(`{"firstName":`))

	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeApplicationValidationFailed, stdErr.Code)
	assert.Zero(t, store.creates)
}

func TestService_StoreFailure(t *testing.T) {
	store := &memoryStore{createErr: apperrors.NewDatabaseInsertFailedError(errors.New("disk full"))}
	recorder := &fakeRecorder{}
	notifier := &fakeNotifier{}
	svc := NewService(store, logger.NewNoOpLogger(), WithRecorder(recorder), WithNotifier(notifier))

	_, err := svc.CreateApplication(context.Background(), encode(t, validPayload()))

	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeDatabaseInsertFailed, stdErr.Code)
	assert.Zero(t, notifier.calls)
	assert.Equal(t, []recordedSubmission{{status: observability.StatusFailed}}, recorder.records)
}

func TestService_NotificationFailureDoesNotFailSubmission(t *testing.T) {
	store := &memoryStore{}
	notifier := &fakeNotifier{err: errors.New("ses unavailable")}
	svc := NewService(store, logger.NewNoOpLogger(), WithNotifier(notifier))

	app, err := svc.CreateApplication(context.Background(), encode(t, validPayload()))
	require.NoError(t, err)
	assert.NotNil(t, app)
	assert.Len(t, store.apps, 1)
}

func TestService_NotificationSurvivesCancelledRequest(t *testing.T) {
	store := &memoryStore{}
	notifier := &fakeNotifier{}
	svc := NewService(store, logger.NewNoOpLogger(), WithNotifier(notifier))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	app, err := svc.CreateApplication(ctx, encode(t, validPayload()))
	require.NoError(t, err)

	assert.NotNil(t, app)
	assert.Equal(t, 1, notifier.calls)
	assert.NoError(t, notifier.ctxErr)
}

func TestService_ListApplications(t *testing.T) {
	store := &memoryStore{}
	svc := NewService(store, logger.NewNoOpLogger())
	ctx := context.Background()

	apps, err := svc.ListApplications(ctx)
	require.NoError(t, err)
	assert.Empty(t, apps)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateApplication(ctx, encode(t, validPayload()))
		require.NoError(t, err)
	}

	apps, err = svc.ListApplications(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 3)
	for i, app := range apps {
		assert.Equal(t, int64(i+1), app.ID)
	}
}

func TestService_ListApplicationsError(t *testing.T) {
	store := &memoryStore{listErr: apperrors.NewQueryExecutionFailedError("list_applications", errors.New("timeout"))}
	svc := NewService(store, logger.NewNoOpLogger())

	_, err := svc.ListApplications(context.Background())
	assert.Error(t, err)
}
