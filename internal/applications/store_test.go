package applications

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"testing"
	"time"

	apperrors "github.com/devops863/kaizen-sourcing/internal/common/errors"
	"github.com/devops863/kaizen-sourcing/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var applicationRowColumns = []string{
	"id",
	"first_name", "last_name", "dob", "ni_number", "email", "contact_number", "address", "house_number", "postcode",
	"agency_registration", "start_date", "job_title", "agency_company", "pay_rate", "residence",
	"documents",
	"bank_name", "account_name", "account_number", "sort_code", "employee_type",
	"consent_transactional", "consent_marketing",
	"description", "time_scale",
	"created_at",
}

func sampleInsert() *models.InsertApplication {
	return &models.InsertApplication{
		FirstName:            "Jane",
		LastName:             "Doe",
		DOB:                  "1990-01-01",
		NINumber:             "QQ123456C",
		Email:                "jane@example.com",
		ContactNumber:        "07700900123",
		Address:              "High St",
		HouseNumber:          "1",
		Postcode:             "AB1 2CD",
		AgencyRegistration:   models.AgencyRegistrationNew,
		StartDate:            "2024-06-01",
		JobTitle:             "Carpenter",
		AgencyCompany:        models.DefaultAgencyCompany,
		PayRate:              "18",
		Residence:            models.ResidenceCitizen,
		BankName:             "Bank",
		AccountName:          "J Doe",
		AccountNumber:        "12345678",
		SortCode:             "12-34-56",
		EmployeeType:         models.EmployeeTypePAYE,
		ConsentTransactional: true,
	}
}

func rowValues(id int64, in *models.InsertApplication, documents interface{}, description interface{}, createdAt time.Time) []driver.Value {
	return []driver.Value{
		id,
		in.FirstName, in.LastName, in.DOB, in.NINumber, in.Email, in.ContactNumber, in.Address, in.HouseNumber, in.Postcode,
		in.AgencyRegistration, in.StartDate, in.JobTitle, in.AgencyCompany, in.PayRate, in.Residence,
		documents,
		in.BankName, in.AccountName, in.AccountNumber, in.SortCode, in.EmployeeType,
		in.ConsentTransactional, in.ConsentMarketing,
		description, nil,
		createdAt,
	}
}

func TestPostgresStore_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	in := sampleInsert()
	created := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	args := make([]driver.Value, 0, 25)
	for _, v := range rowValues(0, in, sqlmock.AnyArg(), nil, created)[1:26] {
		args = append(args, v)
	}
	args[15] = "{}"

	mock.ExpectQuery(`INSERT INTO applications \(`).
		WithArgs(args...).
		WillReturnRows(sqlmock.NewRows(applicationRowColumns).
			AddRow(rowValues(7, in, "{}", nil, created)...))

	store := NewPostgresStore(db)
	app, err := store.Create(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, int64(7), app.ID)
	assert.Equal(t, created, app.CreatedAt)
	assert.Equal(t, "Jane", app.FirstName)
	assert.Equal(t, []string{}, app.Documents)
	assert.Nil(t, app.Description)
	assert.Nil(t, app.TimeScale)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateWithDocumentsAndDescription(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	in := sampleInsert()
	in.Documents = []string{"passport.pdf", "cscs card.jpg"}
	desc := "Ten years on site"
	in.Description = &desc

	mock.ExpectQuery(`INSERT INTO applications \(`).
		WillReturnRows(sqlmock.NewRows(applicationRowColumns).
			AddRow(rowValues(8, in, `{passport.pdf,"cscs card.jpg"}`, desc, time.Now())...))

	app, err := NewPostgresStore(db).Create(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, []string{"passport.pdf", "cscs card.jpg"}, app.Documents)
	require.NotNil(t, app.Description)
	assert.Equal(t, desc, *app.Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO applications \(`).
		WillReturnError(errors.New("connection reset"))

	app, err := NewPostgresStore(db).Create(context.Background(), sampleInsert())
	assert.Nil(t, app)

	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeDatabaseInsertFailed, stdErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ConnectionFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	refused := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	mock.ExpectQuery(`INSERT INTO applications \(`).WillReturnError(refused)
	mock.ExpectQuery(`SELECT id,(.|\n)+FROM applications ORDER BY id`).WillReturnError(refused)

	store := NewPostgresStore(db)

	_, err = store.Create(context.Background(), sampleInsert())
	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeDatabaseConnectionFailed, stdErr.Code)

	_, err = store.List(context.Background())
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeDatabaseConnectionFailed, stdErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	first := sampleInsert()
	second := sampleInsert()
	second.FirstName = "John"

	mock.ExpectQuery(`SELECT id,(.|\n)+FROM applications ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(applicationRowColumns).
			AddRow(rowValues(1, first, "{}", nil, time.Now())...).
			AddRow(rowValues(2, second, nil, nil, time.Now())...))

	apps, err := NewPostgresStore(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, apps, 2)

	assert.Equal(t, int64(1), apps[0].ID)
	assert.Equal(t, "John", apps[1].FirstName)
	assert.Equal(t, []string{}, apps[1].Documents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM applications ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(applicationRowColumns))

	apps, err := NewPostgresStore(db).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, apps)
	assert.Empty(t, apps)
}

func TestPostgresStore_ListFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM applications ORDER BY id`).
		WillReturnError(errors.New("relation \"applications\" does not exist"))

	_, err = NewPostgresStore(db).List(context.Background())

	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeQueryExecutionFailed, stdErr.Code)
}
