package qualify

// Stage classifies how far along a qualification conversation is,
// based purely on transcript length.
type Stage string

const (
	StageDiscovery     Stage = "discovery"
	StageQualification Stage = "qualification"
	StageClosing       Stage = "closing"
)

// ClassifyStage maps a transcript length onto a conversation stage.
func ClassifyStage(messageCount int) Stage {
	switch {
	case messageCount < 4:
		return StageDiscovery
	case messageCount < 8:
		return StageQualification
	default:
		return StageClosing
	}
}

type responseStrategy struct {
	Stage            Stage
	Strategy         string
	PrimaryObjective string
	NextQuestion     string
	Tone             string
	MissingCritical  []string
	QualitySignals   []string
}

// determineStrategy picks the guidance handed to the reply generator for
// this turn: what is still unknown, what signals look promising, and what
// single question the reply should steer toward.
func determineStrategy(data ExtractedData, history []Message) responseStrategy {
	var missing []string
	if data.ProjectType == "" {
		missing = append(missing, "project type")
	}
	if data.Timeline == "" {
		missing = append(missing, "timeline")
	}
	if data.BudgetRange == "" {
		missing = append(missing, "budget range")
	}
	if data.CompanySize == "" {
		missing = append(missing, "company size")
	}
	if len(data.PainPoints) == 0 {
		missing = append(missing, "pain points")
	}

	var signals []string
	if data.Timeline == TimelineImmediate {
		signals = append(signals, "urgent timeline")
	}
	if data.BudgetRange == BudgetOver50K || data.BudgetRange == Budget15KTo50K {
		signals = append(signals, "substantial budget")
	}
	if data.CompanySize == CompanyLarge || data.CompanySize == CompanyMedium {
		signals = append(signals, "enterprise scale")
	}

	s := responseStrategy{
		Stage:            ClassifyStage(len(history)),
		Strategy:         "general_discovery",
		PrimaryObjective: "Build rapport and understand basic needs",
		NextQuestion:     "project goals and challenges",
		Tone:             "friendly and consultative",
		MissingCritical:  missing,
		QualitySignals:   signals,
	}

	switch s.Stage {
	case StageDiscovery:
		if data.ProjectType == "" {
			s.Strategy = "project_identification"
			s.PrimaryObjective = "Identify the type of project and its scope"
			s.NextQuestion = "specific AI or automation challenges they face"
		} else if len(data.PainPoints) == 0 {
			s.Strategy = "pain_point_discovery"
			s.PrimaryObjective = "Uncover the business problems they need to solve"
			s.NextQuestion = "their biggest operational challenges or inefficiencies"
		}
	case StageQualification:
		if data.Timeline == "" {
			s.Strategy = "timeline_urgency"
			s.PrimaryObjective = "Understand project urgency and decision timeline"
			s.NextQuestion = "when they need this implemented and what's driving the timeline"
		} else if data.BudgetRange == "" {
			s.Strategy = "budget_discovery"
			s.PrimaryObjective = "Understand investment capacity without being pushy"
			s.NextQuestion = "the scale of investment they're considering and ROI expectations"
			s.Tone = "consultative and value-focused"
		}
	case StageClosing:
		s.Strategy = "closing_qualification"
		s.PrimaryObjective = "Confirm fit and guide toward next steps"
		s.NextQuestion = "decision-making process and stakeholders involved"
		s.Tone = "confident and action-oriented"
	}

	return s
}
