package ingest

// File is the question import schema loaded from JSON or YAML. A file-level
// certification applies to every record that does not set its own.
type File struct {
	Certification string   `json:"certification,omitempty" yaml:"certification,omitempty"`
	Questions     []Record `json:"questions" yaml:"questions"`
}

// Record is one imported question before normalization. CorrectAnswers
// accepts the answer-key spellings found in the wild: option letters ("A"),
// zero-based index strings ("2"), or plain integers.
type Record struct {
	Certification  string   `json:"certification,omitempty" yaml:"certification,omitempty"`
	Domain         string   `json:"domain,omitempty" yaml:"domain,omitempty"`
	Text           string   `json:"question_text" yaml:"question_text"`
	Kind           string   `json:"question_type,omitempty" yaml:"question_type,omitempty"`
	Options        []string `json:"options" yaml:"options"`
	CorrectAnswers []any    `json:"correct_answers" yaml:"correct_answers"`
	Explanation    string   `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Difficulty     string   `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
}
