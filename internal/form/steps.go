package form

import (
	"github.com/devops863/kaizen-sourcing/internal/common/validation"
)

const (
	FirstStep = 1
	LastStep  = 6
)

// Step is one page of the application form. The set of implementations is
// closed; use StepFor to select the variant for a step number.
type Step interface {
	Number() int
	Title() string
	Intro() string
	Fields() []FieldDescriptor
	// Validate checks only this step's fields and returns field -> message.
	Validate(contract *validation.Contract, values map[string]interface{}) map[string]string
	isStep()
}

// fieldStep validates its own field names against the shared contract.
type fieldStep struct {
	number int
	title  string
	intro  string
	fields []FieldDescriptor
}

func (s fieldStep) Number() int   { return s.number }
func (s fieldStep) Title() string { return s.title }
func (s fieldStep) Intro() string { return s.intro }

func (s fieldStep) Fields() []FieldDescriptor {
	out := make([]FieldDescriptor, len(s.fields))
	copy(out, s.fields)
	return out
}

func (s fieldStep) names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

func (s fieldStep) Validate(contract *validation.Contract, values map[string]interface{}) map[string]string {
	result := contract.ValidateFields(values, s.names()...)
	if result.Valid {
		return nil
	}
	return result.FieldErrors()
}

func (fieldStep) isStep() {}

type PersonalInfoStep struct{ fieldStep }
type EmploymentStep struct{ fieldStep }
type PaymentStep struct{ fieldStep }
type ConsentStep struct{ fieldStep }

// DocumentsStep collects document references. Upload is not implemented, so
// the step never blocks advancement.
type DocumentsStep struct{ fieldStep }

func (DocumentsStep) Validate(*validation.Contract, map[string]interface{}) map[string]string {
	return nil
}

// ReviewStep holds the optional free-text fields and the final summary.
type ReviewStep struct{ fieldStep }

// SummaryItem is one line of the review page.
type SummaryItem struct {
	Step  string
	Label string
	Value string
}

// Summary lists what will be submitted, step by step, in display form.
func (ReviewStep) Summary(values map[string]interface{}) []SummaryItem {
	var items []SummaryItem
	for _, step := range Steps() {
		for _, f := range step.Fields() {
			items = append(items, SummaryItem{
				Step:  step.Title(),
				Label: f.Label,
				Value: displayValue(f, values[f.Name]),
			})
		}
	}
	return items
}

var steps = []Step{
	PersonalInfoStep{fieldStep{
		number: 1,
		title:  "Personal Info",
		fields: []FieldDescriptor{
			{Name: "firstName", Label: "First Name", Kind: KindText, Placeholder: "John"},
			{Name: "lastName", Label: "Last Name", Kind: KindText, Placeholder: "Doe"},
			{Name: "dob", Label: "Date of Birth", Kind: KindDate, Placeholder: "YYYY-MM-DD"},
			{Name: "niNumber", Label: "National Insurance Number", Kind: KindText, Placeholder: "QQ 12 34 56 A", Hint: "Required for UK employment verification."},
			{Name: "email", Label: "Email Address", Kind: KindEmail, Placeholder: "john.doe@example.com"},
			{Name: "contactNumber", Label: "Phone Number", Kind: KindText, Placeholder: "07123 456789"},
			{Name: "address", Label: "Street Address", Kind: KindText, Placeholder: "123 Construction Road"},
			{Name: "houseNumber", Label: "House/Flat Number", Kind: KindText, Placeholder: "42"},
			{Name: "postcode", Label: "Postcode", Kind: KindText, Placeholder: "SW1A 1AA"},
		},
	}},
	EmploymentStep{fieldStep{
		number: 2,
		title:  "Employment",
		fields: []FieldDescriptor{
			{Name: "agencyRegistration", Label: "Agency Registration Status", Kind: KindSelect, Placeholder: "Select status", Options: []SelectOption{
				{Value: "New", Label: "New Registration"},
				{Value: "Existing", Label: "Existing Candidate"},
				{Value: "Re-registering", Label: "Re-registering"},
			}},
			{Name: "startDate", Label: "Available Start Date", Kind: KindDate, Placeholder: "YYYY-MM-DD"},
			{Name: "jobTitle", Label: "Job Title / Role", Kind: KindSelect, Placeholder: "Select role", Options: []SelectOption{
				{Value: "Labourer", Label: "General Labourer"},
				{Value: "Carpenter", Label: "Carpenter / Joiner"},
				{Value: "Electrician", Label: "Electrician"},
				{Value: "Plumber", Label: "Plumber"},
				{Value: "Bricklayer", Label: "Bricklayer"},
				{Value: "Painter", Label: "Painter & Decorator"},
				{Value: "Site Manager", Label: "Site Manager"},
				{Value: "Other", Label: "Other"},
			}},
			{Name: "agencyCompany", Label: "Agency", Kind: KindText, ReadOnly: true},
			{Name: "payRate", Label: "Expected Pay Rate (£/hr)", Kind: KindText, Placeholder: "e.g. 15.00"},
			{Name: "residence", Label: "UK Residence Status", Kind: KindSelect, Placeholder: "Select status", Options: []SelectOption{
				{Value: "Citizen", Label: "UK Citizen"},
				{Value: "Settled", Label: "Settled Status"},
				{Value: "Pre-settled", Label: "Pre-settled Status"},
				{Value: "Visa", Label: "Work Visa"},
			}},
		},
	}},
	DocumentsStep{fieldStep{
		number: 3,
		title:  "Documents",
		intro:  "Please verify your identity. Upload a copy of your ID (Passport/Driving License) and CSCS Card. Document upload is simulated; you can proceed without uploading.",
		fields: []FieldDescriptor{
			{Name: "documents", Label: "Documents", Kind: KindFiles},
		},
	}},
	PaymentStep{fieldStep{
		number: 4,
		title:  "Payment",
		fields: []FieldDescriptor{
			{Name: "bankName", Label: "Bank Name", Kind: KindText, Placeholder: "e.g. Barclays"},
			{Name: "accountName", Label: "Account Holder Name", Kind: KindText, Placeholder: "Mr John Doe"},
			{Name: "accountNumber", Label: "Account Number", Kind: KindText, Placeholder: "12345678"},
			{Name: "sortCode", Label: "Sort Code", Kind: KindText, Placeholder: "00-00-00"},
			{Name: "employeeType", Label: "Payment Type", Kind: KindSelect, Placeholder: "Select payment method", Options: []SelectOption{
				{Value: "PAYE", Label: "PAYE"},
				{Value: "CIS", Label: "CIS (Construction Industry Scheme)"},
				{Value: "Umbrella", Label: "Umbrella Company"},
				{Value: "LTD", Label: "Limited Company"},
			}},
		},
	}},
	ConsentStep{fieldStep{
		number: 5,
		title:  "Consent",
		intro:  "We take your privacy seriously. Your data is processed securely and only used for recruitment purposes in accordance with our Privacy Policy.",
		fields: []FieldDescriptor{
			{Name: "consentTransactional", Label: "I consent to processing my personal data for job applications", Kind: KindCheckbox, Hint: "Required to process your application and contact you about roles."},
			{Name: "consentMarketing", Label: "Receive job alerts and industry news", Kind: KindCheckbox, Hint: "We'll send you relevant opportunities via email/SMS. You can opt out anytime."},
		},
	}},
	ReviewStep{fieldStep{
		number: 6,
		title:  "Review",
		intro:  "Please review your details before submitting. By submitting, you confirm all information is accurate.",
		fields: []FieldDescriptor{
			{Name: "description", Label: "Additional Information / Skills", Kind: KindTextArea, Placeholder: "Tell us about your experience, specific tickets (CSCS, IPAF, etc), or preferences..."},
			{Name: "timeScale", Label: "When can you start?", Kind: KindText, Placeholder: "Immediately / 1 week notice"},
		},
	}},
}

// Steps returns the six steps in order.
func Steps() []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}

// StepFor returns the variant for n, clamped to the valid range.
func StepFor(n int) Step {
	switch {
	case n < FirstStep:
		n = FirstStep
	case n > LastStep:
		n = LastStep
	}
	return steps[n-1]
}

func allFields() []FieldDescriptor {
	var out []FieldDescriptor
	for _, s := range steps {
		out = append(out, s.Fields()...)
	}
	return out
}
