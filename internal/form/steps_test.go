package form

import (
	"encoding/json"
	"testing"

	"github.com/devops863/kaizen-sourcing/internal/common/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSteps_TitlesAndVariants(t *testing.T) {
	all := Steps()
	require.Len(t, all, LastStep)

	titles := make([]string, len(all))
	for i, s := range all {
		assert.Equal(t, i+1, s.Number())
		titles[i] = s.Title()
	}
	assert.Equal(t, []string{"Personal Info", "Employment", "Documents", "Payment", "Consent", "Review"}, titles)

	assert.IsType(t, PersonalInfoStep{}, all[0])
	assert.IsType(t, EmploymentStep{}, all[1])
	assert.IsType(t, DocumentsStep{}, all[2])
	assert.IsType(t, PaymentStep{}, all[3])
	assert.IsType(t, ConsentStep{}, all[4])
	assert.IsType(t, ReviewStep{}, all[5])
}

func TestStepFor_Clamps(t *testing.T) {
	assert.Equal(t, 1, StepFor(0).Number())
	assert.Equal(t, 1, StepFor(-3).Number())
	assert.Equal(t, 4, StepFor(4).Number())
	assert.Equal(t, 6, StepFor(7).Number())
}

func TestSteps_FieldMapping(t *testing.T) {
	want := map[int][]string{
		1: {"firstName", "lastName", "dob", "niNumber", "email", "contactNumber", "address", "houseNumber", "postcode"},
		2: {"agencyRegistration", "startDate", "jobTitle", "agencyCompany", "payRate", "residence"},
		3: {"documents"},
		4: {"bankName", "accountName", "accountNumber", "sortCode", "employeeType"},
		5: {"consentTransactional", "consentMarketing"},
		6: {"description", "timeScale"},
	}

	for n, fields := range want {
		var got []string
		for _, f := range StepFor(n).Fields() {
			got = append(got, f.Name)
		}
		assert.Equal(t, fields, got, "step %d", n)
	}
}

func TestSteps_CoverEveryContractField(t *testing.T) {
	contract := validation.Application()
	seen := map[string]int{}
	for _, f := range allFields() {
		assert.True(t, contract.Declares(f.Name), f.Name)
		seen[f.Name]++
	}
	for _, name := range contract.Fields() {
		assert.Equal(t, 1, seen[name], name)
	}
}

func TestSteps_OptionsMatchSchemaEnums(t *testing.T) {
	var doc struct {
		Properties map[string]struct {
			Enum []string `json:"enum"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(validation.Application().Raw(), &doc))

	for _, f := range allFields() {
		if f.Kind != KindSelect {
			continue
		}
		values := make([]string, len(f.Options))
		for i, o := range f.Options {
			values[i] = o.Value
		}
		assert.ElementsMatch(t, doc.Properties[f.Name].Enum, values, f.Name)
	}
}

func TestDocumentsStep_IgnoresValues(t *testing.T) {
	step := StepFor(3)
	assert.Nil(t, step.Validate(validation.Application(), map[string]interface{}{"documents": 12}))
}

func TestReviewStep_Summary(t *testing.T) {
	values := map[string]interface{}{}
	for k, v := range sampleValues {
		values[k] = v
	}
	values["documents"] = []string{}
	values["description"] = ""

	review, ok := StepFor(6).(ReviewStep)
	require.True(t, ok)

	items := review.Summary(values)
	require.Len(t, items, len(allFields()))

	byLabel := map[string]SummaryItem{}
	for _, item := range items {
		byLabel[item.Label] = item
	}
	assert.Equal(t, "General Labourer", byLabel["Job Title / Role"].Value)
	assert.Equal(t, "Employment", byLabel["Job Title / Role"].Step)
	assert.Equal(t, "UK Citizen", byLabel["UK Residence Status"].Value)
	assert.Equal(t, "Yes", byLabel["I consent to processing my personal data for job applications"].Value)
	assert.Equal(t, "No", byLabel["Receive job alerts and industry news"].Value)
	assert.Equal(t, "None", byLabel["Documents"].Value)
	assert.Equal(t, "-", byLabel["Additional Information / Skills"].Value)
}

func TestFieldDescriptor_Empty(t *testing.T) {
	assert.Equal(t, "", FieldDescriptor{Kind: KindText}.Empty())
	assert.Equal(t, false, FieldDescriptor{Kind: KindCheckbox}.Empty())
	assert.Equal(t, []string{}, FieldDescriptor{Kind: KindFiles}.Empty())
}
