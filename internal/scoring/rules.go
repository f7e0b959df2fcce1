package scoring

import "regexp"

// category groups rules for scam-type selection.
type category int

const (
	categoryNone category = iota
	categoryPayment
	categoryInfoHarvesting
	categoryRecruiting
	categoryCompany
)

// rule is one weighted text pattern. Weights are in hundredths of confidence.
type rule struct {
	pattern  *regexp.Regexp
	weight   int
	label    string
	category category
}

// textRules are evaluated in order against lower-cased title + description.
var textRules = []rule{
	{
		pattern:  regexp.MustCompile(`(registration|training|starter|application|processing|upfront|onboarding|equipment)\s+(fee|kit|cost|payment|deposit)|fee (is )?required|pay (a|the|an) (small )?(fee|deposit)|purchase (a|your)? ?(starter )?kit`),
		weight:   40,
		label:    "Requests upfront payment",
		category: categoryPayment,
	},
	{
		pattern:  regexp.MustCompile(`wire transfer|western union|moneygram|bitcoin|crypto(currency)?\b|gift cards?|money orders?|cash(ing)? (a )?checks?|transfer funds|receive payments? (on|for) (our|the) behalf`),
		weight:   50,
		label:    "Money transfer or cryptocurrency involved",
		category: categoryPayment,
	},
	{
		pattern: regexp.MustCompile(`\$\s?[\d,]{3,}\s*(per|a|/|each)\s*(day|daily)|guaranteed (income|pay|salary|earnings)|six[- ]figures? (from home|part[- ]time|in weeks)|earn up to \$`),
		weight:  30,
		label:   "Unrealistic pay",
	},
	{
		pattern: regexp.MustCompile(`earn \$\s?[\d,]+|get rich|easy money|quick cash|make money fast|fast cash|unlimited (earning|income)|financial freedom|passive income`),
		weight:  40,
		label:   "Get-rich-quick language",
	},
	{
		pattern: regexp.MustCompile(`data entry|simple tasks?|easy (online )?(tasks?|work|jobs?)|no interview|package (forwarding|handling|reshipping)|reshipping|envelope stuffing|product testing from home|like (and|&) share`),
		weight:  20,
		label:   "Vague job duties",
	},
	{
		pattern: regexp.MustCompile(`no experience|no (skills|qualifications|resume|degree) (required|needed|necessary)|anyone can (do|apply)|no background check`),
		weight:  30,
		label:   "Unrealistically low requirements",
	},
	{
		pattern:  regexp.MustCompile(`social security|\bssn\b|bank account (number|details|info)|routing number|credit card (number|details|info)|passport (number|copy|scan)|driver'?s licen[cs]e (number|copy|scan)|date of birth|mother'?s maiden name`),
		weight:   40,
		label:    "Requests sensitive personal information",
		category: categoryInfoHarvesting,
	},
	{
		pattern:  regexp.MustCompile(`whatsapp|telegram|signal app|google hangouts|wickr|text (me|us) (at|on)|contact (me|us) (via|on) (whatsapp|telegram|signal|hangouts|text)`),
		weight:   30,
		label:    "Unprofessional contact channel",
		category: categoryInfoHarvesting,
	},
	{
		pattern:  regexp.MustCompile(`(amazon|google|apple|microsoft|facebook|meta|netflix|walmart|fedex|ups|dhl|tesla|coca[- ]cola) (is )?(hiring|recruiting)|(on behalf of|partnered with|authorized by) (amazon|google|apple|microsoft|facebook|meta|netflix|walmart|fedex|ups|dhl|tesla)`),
		weight:   40,
		label:    "Impersonates a major company",
		category: categoryCompany,
	},
	{
		pattern:  regexp.MustCompile(`\bmlm\b|multi[- ]level marketing|pyramid|network marketing|recruit (your )?(friends|family|others|people)|build your (own )?team|downline|be your own boss`),
		weight:   40,
		label:    "MLM or pyramid scheme language",
		category: categoryRecruiting,
	},
	{
		pattern: regexp.MustCompile(`\burgent(ly)?\b|immediate(ly)? (start|hire|hiring)|hiring immediately|act (now|fast)|limited (spots|positions|time|openings)|apply (now|today) before|only \d+ (spots|positions) left`),
		weight:  20,
		label:   "Urgency pressure",
	},
	{
		pattern: regexp.MustCompile(`\b(recieve|oppurtunity|oportunity|guarenteed|garanteed|experiance|sucess|buisness|immediatly|salery|payed|comission|proffesional)\b`),
		weight:  20,
		label:   "Poor spelling",
	},
}

// personalEmailDomains each contribute when found in the description or
// contact email.
var personalEmailDomains = []*regexp.Regexp{
	regexp.MustCompile(`@gmail\.com\b`),
	regexp.MustCompile(`@yahoo\.[a-z.]+\b`),
	regexp.MustCompile(`@hotmail\.[a-z.]+\b`),
	regexp.MustCompile(`@outlook\.com\b`),
	regexp.MustCompile(`@aol\.com\b`),
	regexp.MustCompile(`@icloud\.com\b`),
	regexp.MustCompile(`@proton(mail)?\.[a-z.]+\b`),
	regexp.MustCompile(`@(mail|yandex)\.ru\b`),
}

const personalEmailWeight = 20

// genericSuffixes each contribute when found as a word of the company name,
// so "Global Solutions Group LLC" stacks four of them.
var genericSuffixes = []*regexp.Regexp{
	regexp.MustCompile(`\b(llc|l\.l\.c)\b`),
	regexp.MustCompile(`\binc\b`),
	regexp.MustCompile(`\bltd\b`),
	regexp.MustCompile(`\b(corp|corporation)\b`),
	regexp.MustCompile(`\bco\b`),
	regexp.MustCompile(`\bgroup\b`),
	regexp.MustCompile(`\bsolutions\b`),
	regexp.MustCompile(`\benterprises?\b`),
	regexp.MustCompile(`\binternational\b`),
	regexp.MustCompile(`\bglobal\b`),
	regexp.MustCompile(`\bholdings\b`),
}

const genericSuffixWeight = 10

var vagueLocations = map[string]bool{
	"":                   true,
	"remote":             true,
	"anywhere":           true,
	"worldwide":          true,
	"various":            true,
	"multiple locations": true,
	"work from home":     true,
	"home":               true,
	"online":             true,
	"n/a":                true,
	"tbd":                true,
}

const (
	vagueLocationWeight    = 10
	shortDescriptionWeight = 20
	shortDescriptionChars  = 100
	highHourlyRateWeight   = 20
	highHourlyRate         = 50.0
)

var hourlyRate = regexp.MustCompile(`\$\s?(\d+(?:\.\d+)?)\s*(?:/|per|an?)\s*(?:hour|hr)\b`)
