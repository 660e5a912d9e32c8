package insights

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gmelani/medtrack/internal/record"
)

// promptVisit and promptExam strip ids and costs from the history sent
// to the model; only clinically relevant fields go out.
type promptVisit struct {
	Specialist string `json:"specialist"`
	Date       string `json:"date"`
	Notes      string `json:"notes"`
}

type promptExam struct {
	Name    string `json:"name"`
	Date    string `json:"date"`
	Results string `json:"results"`
}

// BuildPrompt renders the analysis prompt for the snapshot. Output
// language is Italian, matching the app's audience, with fixed section
// headings so the rendered page is stable across generations.
func BuildPrompt(snap *record.Snapshot) string {
	visits := make([]promptVisit, 0, len(snap.Visits))
	for _, v := range snap.Visits {
		name := snap.SpecialistName(&v.SpecialistID)
		if name == "" {
			name = "Unknown"
		}
		visits = append(visits, promptVisit{Specialist: name, Date: v.Date, Notes: v.Notes})
	}

	exams := make([]promptExam, 0, len(snap.Exams))
	for _, e := range snap.Exams {
		exams = append(exams, promptExam{Name: e.Name, Date: e.Date, Results: e.Results})
	}

	intervals := make([]string, 0, len(snap.Specialists))
	for _, s := range snap.Specialists {
		intervals = append(intervals, fmt.Sprintf("- %s: every %d months", s.Name, s.Interval))
	}

	visitsJSON, _ := json.MarshalIndent(visits, "", "  ")
	examsJSON, _ := json.MarshalIndent(exams, "", "  ")

	var b strings.Builder
	b.WriteString(`Analyze the following medical history and provide personalized health insights in Italian.
The user is tracking their medical visits and exams.
Based on the data, provide:
1. A brief, positive, and encouraging summary of their health tracking efforts.
2. A section on "Suggerimenti Proattivi" (Proactive Suggestions) highlighting any upcoming check-ups based on standard intervals (e.g., Dentist every 6 months, Eye doctor every 12 months).
3. A section on "Pattern Emergenti" (Emerging Patterns) if you notice any interesting connections or recurring themes in their notes or results. Be careful and do not provide medical advice.
4. A section with "Domande Utili per il Tuo Medico" (Useful Questions for Your Doctor) to help them prepare for their next appointment.

IMPORTANT: Do NOT provide any medical diagnosis or definitive advice. Phrase everything as suggestions, questions to ask a professional, or patterns to discuss with a doctor. Use a friendly, clear, and supportive tone.
Format the output as clean markdown.

Medical History:
Specialists and their recommended check-up intervals (in months):
`)
	b.WriteString(strings.Join(intervals, "\n"))
	b.WriteString("\n\nVisits:\n")
	b.Write(visitsJSON)
	b.WriteString("\n\nExams:\n")
	b.Write(examsJSON)
	b.WriteString("\n")

	return b.String()
}
