package models

import "time"

// DefaultAgencyCompany pre-fills the agency field on a fresh form.
const DefaultAgencyCompany = "Kaizen Sourcing"

const (
	AgencyRegistrationNew           = "New"
	AgencyRegistrationExisting      = "Existing"
	AgencyRegistrationReRegistering = "Re-registering"
)

const (
	ResidenceCitizen    = "Citizen"
	ResidenceSettled    = "Settled"
	ResidencePreSettled = "Pre-settled"
	ResidenceVisa       = "Visa"
)

const (
	EmployeeTypePAYE     = "PAYE"
	EmployeeTypeCIS      = "CIS"
	EmployeeTypeUmbrella = "Umbrella"
	EmployeeTypeLTD      = "LTD"
)

// InsertApplication is the client-supplied part of an application. It carries
// no id or createdAt.
type InsertApplication struct {
	// Personal
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	DOB           string `json:"dob"`
	NINumber      string `json:"niNumber"`
	Email         string `json:"email"`
	ContactNumber string `json:"contactNumber"`
	Address       string `json:"address"`
	HouseNumber   string `json:"houseNumber"`
	Postcode      string `json:"postcode"`

	// Employment
	AgencyRegistration string `json:"agencyRegistration"`
	StartDate          string `json:"startDate"`
	JobTitle           string `json:"jobTitle"`
	AgencyCompany      string `json:"agencyCompany"`
	PayRate            string `json:"payRate"`
	Residence          string `json:"residence"`

	Documents []string `json:"documents"`

	// Payment
	BankName      string `json:"bankName"`
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
	SortCode      string `json:"sortCode"`
	EmployeeType  string `json:"employeeType"`

	ConsentTransactional bool `json:"consentTransactional"`
	ConsentMarketing     bool `json:"consentMarketing"`

	Description *string `json:"description"`
	TimeScale   *string `json:"timeScale"`
}

// Application is a persisted row.
type Application struct {
	ID int64 `json:"id"`
	InsertApplication
	CreatedAt time.Time `json:"createdAt"`
}

// FullName is used in notifications and listings.
func (a *InsertApplication) FullName() string {
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	default:
		return a.FirstName + " " + a.LastName
	}
}
