package applications

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	apperrors "github.com/devops863/kaizen-sourcing/internal/common/errors"
	"github.com/devops863/kaizen-sourcing/internal/models"

	"github.com/lib/pq"
)

// Store is the persistence contract for applications. Implementations must make
// Create atomic: the row exists with its id and created_at, or not at all.
type Store interface {
	Create(ctx context.Context, in *models.InsertApplication) (*models.Application, error)
	List(ctx context.Context) ([]models.Application, error)
}

const applicationColumns = `id,
		first_name, last_name, dob, ni_number, email, contact_number, address, house_number, postcode,
		agency_registration, start_date, job_title, agency_company, pay_rate, residence,
		documents,
		bank_name, account_name, account_number, sort_code, employee_type,
		consent_transactional, consent_marketing,
		description, time_scale,
		created_at`

const insertApplicationSQL = `
	INSERT INTO applications (
		first_name, last_name, dob, ni_number, email, contact_number, address, house_number, postcode,
		agency_registration, start_date, job_title, agency_company, pay_rate, residence,
		documents,
		bank_name, account_name, account_number, sort_code, employee_type,
		consent_transactional, consent_marketing,
		description, time_scale
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9,
		$10, $11, $12, $13, $14, $15,
		$16,
		$17, $18, $19, $20, $21,
		$22, $23,
		$24, $25
	)
	RETURNING ` + applicationColumns

const listApplicationsSQL = `SELECT ` + applicationColumns + ` FROM applications ORDER BY id`

// PostgresStore persists applications with database/sql and lib/pq.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, in *models.InsertApplication) (*models.Application, error) {
	documents := pq.StringArray(in.Documents)
	if documents == nil {
		documents = pq.StringArray{}
	}

	row := s.db.QueryRowContext(ctx, insertApplicationSQL,
		in.FirstName, in.LastName, in.DOB, in.NINumber, in.Email, in.ContactNumber, in.Address, in.HouseNumber, in.Postcode,
		in.AgencyRegistration, in.StartDate, in.JobTitle, in.AgencyCompany, in.PayRate, in.Residence,
		documents,
		in.BankName, in.AccountName, in.AccountNumber, in.SortCode, in.EmployeeType,
		in.ConsentTransactional, in.ConsentMarketing,
		in.Description, in.TimeScale,
	)

	app, err := scanApplication(row)
	if err != nil {
		if isConnectionError(err) {
			return nil, apperrors.NewDatabaseConnectionFailedError(err)
		}
		return nil, apperrors.NewDatabaseInsertFailedError(err)
	}
	return app, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Application, error) {
	rows, err := s.db.QueryContext(ctx, listApplicationsSQL)
	if err != nil {
		if isConnectionError(err) {
			return nil, apperrors.NewDatabaseConnectionFailedError(err)
		}
		return nil, apperrors.NewQueryExecutionFailedError("list_applications", err)
	}
	defer rows.Close()

	out := []models.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("list_applications", err)
		}
		out = append(out, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list_applications", err)
	}

	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var (
		app         models.Application
		documents   pq.StringArray
		description sql.NullString
		timeScale   sql.NullString
		createdAt   sql.NullTime
	)

	err := row.Scan(
		&app.ID,
		&app.FirstName, &app.LastName, &app.DOB, &app.NINumber, &app.Email, &app.ContactNumber, &app.Address, &app.HouseNumber, &app.Postcode,
		&app.AgencyRegistration, &app.StartDate, &app.JobTitle, &app.AgencyCompany, &app.PayRate, &app.Residence,
		&documents,
		&app.BankName, &app.AccountName, &app.AccountNumber, &app.SortCode, &app.EmployeeType,
		&app.ConsentTransactional, &app.ConsentMarketing,
		&description, &timeScale,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	app.Documents = []string(documents)
	if app.Documents == nil {
		app.Documents = []string{}
	}
	if description.Valid {
		app.Description = &description.String
	}
	if timeScale.Valid {
		app.TimeScale = &timeScale.String
	}
	if createdAt.Valid {
		app.CreatedAt = createdAt.Time.UTC()
	}

	return &app, nil
}

// isConnectionError reports failures to reach the database, as opposed to
// failures of the statement itself.
func isConnectionError(err error) bool {
	var opErr *net.OpError
	return errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.As(err, &opErr)
}
