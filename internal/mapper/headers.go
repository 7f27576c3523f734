package mapper

// FieldKind tells the mapper how to coerce a resolved cell.
type FieldKind int

const (
	KindText FieldKind = iota
	KindNumber
	KindDate
)

// Field identifies one target field of the normalized record.
type Field string

const (
	FieldProjectCode          Field = "projectCode"
	FieldProjectName          Field = "projectName"
	FieldShortName            Field = "shortName"
	FieldProjectType          Field = "projectType"
	FieldInvestor             Field = "investor"
	FieldBlock                Field = "block"
	FieldProjectDirector      Field = "projectDirector"
	FieldBiddingScope         Field = "biddingScope"
	FieldInitStatus           Field = "initStatus"
	FieldProgressStatus       Field = "progressStatus"
	FieldStartDate            Field = "startDate"
	FieldExpectedEndDate      Field = "expectedEndDate"
	FieldDurationDays         Field = "durationDays"
	FieldDurationMonths       Field = "durationMonths"
	FieldContractValue        Field = "contractValue"
	FieldExecutedValue        Field = "executedValue"
	FieldAcceptedValue        Field = "acceptedValue"
	FieldProposedPaymentValue Field = "proposedPaymentValue"
	FieldRemainingValue       Field = "remainingValue"
	FieldCompletionPercentage Field = "completionPercentage"
	FieldEstimatedBudget      Field = "estimatedBudget"
)

// HeaderMapping binds one spreadsheet column header to a record field.
type HeaderMapping struct {
	Header string
	Field  Field
	Kind   FieldKind
}

// DefaultHeaderTable is the canonical header table: the Vietnamese display
// labels the source workbooks use, followed by their English machine-key
// synonyms so API round-tripped sheets import too. Order matters only for
// deterministic resolution when a sheet repeats a target field.
var DefaultHeaderTable = []HeaderMapping{
	{"Mã dự án", FieldProjectCode, KindText},
	{"Tên dự án", FieldProjectName, KindText},
	{"Tên rút gọn", FieldShortName, KindText},
	{"Loại dự án", FieldProjectType, KindText},
	{"Chủ đầu tư", FieldInvestor, KindText},
	{"Khối", FieldBlock, KindText},
	{"Giám đốc dự án", FieldProjectDirector, KindText},
	{"Phạm vi thầu", FieldBiddingScope, KindText},
	{"Trạng thái khởi tạo", FieldInitStatus, KindText},
	{"Trạng thái trễ tiến độ", FieldProgressStatus, KindText},
	{"Ngày bắt đầu", FieldStartDate, KindDate},
	{"Ngày kết thúc dự kiến", FieldExpectedEndDate, KindDate},
	{"Duration time (day)", FieldDurationDays, KindNumber},
	{"Duration time (month)", FieldDurationMonths, KindNumber},
	{"Giá trị hợp đồng (VND)", FieldContractValue, KindNumber},
	{"Giá trị đã thực hiện (VND)", FieldExecutedValue, KindNumber},
	{"Giá trị đã nghiệm thu", FieldAcceptedValue, KindNumber},
	{"Giá trị đã đề nghị TT, TƯ hợp đồng", FieldProposedPaymentValue, KindNumber},
	{"Giá trị còn lại", FieldRemainingValue, KindNumber},
	{"% hoàn thành", FieldCompletionPercentage, KindNumber},
	{"Ngân sách (VND)", FieldEstimatedBudget, KindNumber},

	// English variations
	{"projectCode", FieldProjectCode, KindText},
	{"projectName", FieldProjectName, KindText},
	{"shortName", FieldShortName, KindText},
	{"projectType", FieldProjectType, KindText},
	{"investor", FieldInvestor, KindText},
	{"block", FieldBlock, KindText},
	{"projectDirector", FieldProjectDirector, KindText},
	{"biddingScope", FieldBiddingScope, KindText},
	{"initStatus", FieldInitStatus, KindText},
	{"progressStatus", FieldProgressStatus, KindText},
	{"startDate", FieldStartDate, KindDate},
	{"expectedEndDate", FieldExpectedEndDate, KindDate},
	{"durationDays", FieldDurationDays, KindNumber},
	{"durationMonths", FieldDurationMonths, KindNumber},
	{"contractValue", FieldContractValue, KindNumber},
	{"executedValue", FieldExecutedValue, KindNumber},
	{"acceptedValue", FieldAcceptedValue, KindNumber},
	{"proposedPaymentValue", FieldProposedPaymentValue, KindNumber},
	{"remainingValue", FieldRemainingValue, KindNumber},
	{"completionPercentage", FieldCompletionPercentage, KindNumber},
	{"estimatedBudget", FieldEstimatedBudget, KindNumber},
}
