package inference

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrIncompleteSummary is returned when a model leaves summary fields empty
var ErrIncompleteSummary = errors.New("incomplete summary")

// SummaryField documents one key of the JSON object a model must return
type SummaryField struct {
	Key         string
	Description string
	value       func(Summary) string
}

// SummaryFields lists the summary keys in output order
var SummaryFields = []SummaryField{
	{
		Key:         "name",
		Description: "name of the candidate",
		value:       func(s Summary) string { return s.Name },
	},
	{
		Key:         "overall_impression",
		Description: "Briefly describe the candidate's general demeanor, communication skills, and presentation during the interview.",
		value:       func(s Summary) string { return s.OverallImpression },
	},
	{
		Key:         "chance_of_getting_the_job",
		Description: "Assess the candidate's overall suitability for the position based on their qualifications, experience, and interview performance.",
		value:       func(s Summary) string { return s.ChanceOfGettingTheJob },
	},
	{
		Key:         "most_relevant_position",
		Description: "If the candidate applied for multiple positions, suggest the most suitable one based on their skills and the interview discussion.",
		value:       func(s Summary) string { return s.MostRelevantPosition },
	},
	{
		Key:         "personal_capability",
		Description: "Summarize the candidate's soft skills, such as teamwork, communication, leadership, and problem-solving abilities, as demonstrated during the interview.",
		value:       func(s Summary) string { return s.PersonalCapability },
	},
	{
		Key:         "psychological_capability",
		Description: "Evaluate the candidate's stress tolerance, adaptability, and emotional intelligence based on their responses and overall demeanor.",
		value:       func(s Summary) string { return s.PsychologicalCapability },
	},
	{
		Key:         "technical_capability",
		Description: "Assess the candidate's technical skills and knowledge relevant to the specific job requirements. Briefly summarize their answers to technical questions and highlight areas of expertise or potential gaps.",
		value:       func(s Summary) string { return s.TechnicalCapability },
	},
	{
		Key:         "final_thoughts",
		Description: "Briefly summarize your overall impression of the candidate and their potential fit within the company culture. Provide any concluding remarks or recommendations for further evaluation if needed.",
		value:       func(s Summary) string { return s.FinalThoughts },
	},
}

// Value returns the summary's text for this field
func (f SummaryField) Value(s Summary) string {
	return f.value(s)
}

// FormatInstructions tells a model which JSON object to produce
func FormatInstructions() string {
	var sb strings.Builder
	sb.WriteString("The output must be a JSON object with exactly these string properties:\n")
	for _, field := range SummaryFields {
		fmt.Fprintf(&sb, "- %q: %s\n", field.Key, field.Description)
	}
	sb.WriteString("All properties are required.")
	return sb.String()
}

// MissingFields returns the keys whose values are blank
func (s Summary) MissingFields() []string {
	var missing []string
	for _, field := range SummaryFields {
		if strings.TrimSpace(field.Value(s)) == "" {
			missing = append(missing, field.Key)
		}
	}
	return missing
}

// DecodeSummary parses model output, tolerating a surrounding markdown code fence
func DecodeSummary(content string) (Summary, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	var summary Summary
	if err := json.NewDecoder(strings.NewReader(content)).Decode(&summary); err != nil {
		return Summary{}, fmt.Errorf("json.Unmarshal(%s) > %w", content, err)
	}
	if missing := summary.MissingFields(); len(missing) > 0 {
		return Summary{}, fmt.Errorf("%w: missing %s", ErrIncompleteSummary, strings.Join(missing, ", "))
	}
	return summary, nil
}
