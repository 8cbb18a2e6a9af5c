package agent

import "time"

// Field is one labeled intake input and the canned value typed into it.
type Field struct {
	Labels      []string
	Value       string
	Description string
}

// Canned values for the Pypestream claims intake preview. They are test
// data, not real policy holders.
var IntakeFields = []Field{
	{Labels: []string{"Policy Number", "Policy #", "Policy"}, Value: "PLCY-12345", Description: "policy number"},
	{Labels: []string{"ZIP", "Zip Code", "Postal"}, Value: "10001", Description: "zip code"},
	{Labels: []string{"Date of Incident", "Incident Date", "Date"}, Value: "01/02/2025", Description: "date"},
	{Labels: []string{"First Name"}, Value: "Test", Description: "first name"},
	{Labels: []string{"Last Name"}, Value: "User", Description: "last name"},
	{Labels: []string{"Phone", "Phone Number"}, Value: "5551234567", Description: "phone number"},
	{Labels: []string{"Email"}, Value: "test.user@example.com", Description: "email"},
}

var (
	EngageTargets      = []string{"Engage with us", "Engage"}
	SafeToLiveTargets  = []string{"Yes", "Safe to live", "Safe"}
	InjuriesTargets    = []string{"No", "Injuries"}
	NextTargets        = []string{"Next", "Continue", "Proceed"}
	ReviewTargets      = []string{"Proceed to Next Section", "Proceed"}
	AddressTargets     = []string{"Address", "Policy Address", "Search address"}
	AddressNextTargets = []string{"Proceed", "Next"}
	QuickReplyTargets  = []string{"Yes", "No", "Continue", "Next", "Proceed"}
	ChatInputTargets   = []string{"Type", "Enter", "Write", "Message", "Say something"}
)

const (
	AddressValue = "123 Main St, New York, NY"
	ChatReply    = "Test response."
)

// Pixel offsets from a label's center to the control it describes.
const (
	fieldOffsetX   = 120
	addressOffsetY = 30
	inputOffsetY   = 25
)

// Empirically tuned against the preview UI.
const (
	proceedAttempts     = 6
	progressPolls       = 3
	staticScreenScore   = 0.02
	defaultClickTimeout = 20 * time.Second
	nextTimeout         = 10 * time.Second
	addressNextTimeout  = 5 * time.Second
	engageTimeout       = 20 * time.Second

	launchWait       = 6 * time.Second
	afterEngageWait  = 4 * time.Second
	afterReviewWait  = 3 * time.Second
	afterClickWait   = 1500 * time.Millisecond
	beforeTypeWait   = 300 * time.Millisecond
	betweenFields    = 500 * time.Millisecond
	missedNextWait   = 1 * time.Second
	hitNextWait      = 2 * time.Second
	changeSampleGap  = 500 * time.Millisecond
	progressPollWait = 2 * time.Second
	addressTypeWait  = 400 * time.Millisecond
	addressEnterWait = 1 * time.Second
	chatTypeWait     = 200 * time.Millisecond
)
