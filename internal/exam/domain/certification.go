package domain

// Certification is one static exam definition. The table is fixed
// configuration, not derived from the question inventory.
type Certification struct {
	Code            string
	Name            string
	Level           string
	DurationMinutes int
	QuestionCount   int
	PassingScore    int
}

// DefaultPassThreshold is the historical fixed threshold used by the
// aggregate stats query. Submit grading uses the per-certification
// passing score instead.
const DefaultPassThreshold = 700

const (
	defaultDurationMinutes = 90
	defaultPassingScore    = 700
)

var certifications = []Certification{
	{
		Code:            "CLF-C02",
		Name:            "AWS Certified Cloud Practitioner",
		Level:           "Foundational",
		DurationMinutes: 90,
		QuestionCount:   65,
		PassingScore:    700,
	},
	{
		Code:            "AIF-C01",
		Name:            "AWS Certified AI Practitioner",
		Level:           "Foundational",
		DurationMinutes: 90,
		QuestionCount:   65,
		PassingScore:    700,
	},
	{
		Code:            "SAA-C03",
		Name:            "AWS Certified Solutions Architect - Associate",
		Level:           "Associate",
		DurationMinutes: 130,
		QuestionCount:   65,
		PassingScore:    720,
	},
	{
		Code:            "SAP-C02",
		Name:            "AWS Certified Solutions Architect - Professional",
		Level:           "Professional",
		DurationMinutes: 180,
		QuestionCount:   75,
		PassingScore:    750,
	},
}

// Certifications returns the static certification table.
func Certifications() []Certification {
	out := make([]Certification, len(certifications))
	copy(out, certifications)
	return out
}

// CertificationByCode returns the certification for an exact code match.
func CertificationByCode(code string) (Certification, bool) {
	for _, cert := range certifications {
		if cert.Code == code {
			return cert, true
		}
	}
	return Certification{}, false
}

// CertificationMetadata resolves display metadata for a code, falling back to
// the historical 90-minute / 700-score defaults for unknown codes so legacy
// session rows stay readable.
func CertificationMetadata(code string) Certification {
	if cert, ok := CertificationByCode(code); ok {
		return cert
	}
	return Certification{
		Code:            code,
		DurationMinutes: defaultDurationMinutes,
		PassingScore:    defaultPassingScore,
	}
}
