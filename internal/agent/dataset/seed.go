package dataset

import "github.com/proposal-review/advisor/internal/agent/model"

const SeedTotalBudget = 300000

// Seed returns a fresh copy of the built-in dataset used when nothing was
// persisted yet.
func Seed() model.DatasetSnapshot {
	return model.DatasetSnapshot{
		Records:     model.CloneRecords(seedRecords),
		TotalBudget: SeedTotalBudget,
		Schedule:    model.CloneSchedule(seedSchedule),
	}
}

var seedRecords = []model.CandidateRecord{
	{
		ID:         "nit",
		Name:       "Northlake Institute of Technology",
		Abbr:       "NIT",
		ThemeColor: "bg-blue-600",
		LogoLetter: "N",
		Concept:    "Rebuild digital road feel for steer-by-wire through a closed-loop haptic torque model that adapts to driver intent in L3 hand-over.",
		Extracts: []string{
			"Background: loss of mechanical linkage breaks driver trust during take-over.",
			"Design rationale: model road feel as a learned torque map tuned per driver.",
			"Plan: simulator study, torque map training, in-vehicle validation on two platforms.",
			"Execution: 18-month plan; team of 3 faculty and 9 graduate researchers with chassis control background.",
		},
		Pros: []string{
			"Deep chassis control expertise",
			"Existing driving simulator rig",
			"Clear path to in-vehicle validation",
		},
		Cons: []string{
			"Limited cockpit UX experience",
			"Aggressive timeline for the second platform",
		},
		Summary: "Technically strongest on steer-by-wire feel; needs a UX partner to land the cockpit side.",
		Assets: model.Assets{Images: []model.ImageAsset{}},
	},
	{
		ID:         "rcd",
		Name:       "Riverside College of Design",
		Abbr:       "RCD",
		ThemeColor: "bg-violet-600",
		LogoLetter: "R",
		Concept:    "Make automation state legible with multimodal cockpit cues so drivers always know who is in control.",
		Extracts: []string{
			"Background: mode confusion is the leading complaint in assisted driving clinics.",
			"Design rationale: align light, sound and seat haptics to one control-authority language.",
			"Plan: ethnographic ride-alongs, cue library, dual-screen layout prototypes.",
			"Execution: 12-month plan; mixed design and HCI team with automotive studio partners.",
		},
		Pros: []string{
			"Strong user research practice",
			"Ready-made dual-screen prototypes",
		},
		Cons: []string{
			"No vehicle dynamics capability",
			"Deliverables lean conceptual",
		},
		Summary: "Best experience story; weak on engineering depth and measurable vehicle outcomes.",
		Assets: model.Assets{Images: []model.ImageAsset{}},
	},
	{
		ID:         "ehu",
		Name:       "Eastharbor University",
		Abbr:       "EHU",
		ThemeColor: "bg-emerald-600",
		LogoLetter: "E",
		Concept:    "Quantify trust calibration with physiological sensing and feed it back into take-over timing.",
		Extracts: []string{
			"Background: take-over requests ignore the driver's actual readiness.",
			"Design rationale: estimate readiness from gaze, grip and heart-rate variability.",
			"Plan: sensor fusion model, closed-course trials, AIOS integration hooks.",
			"Execution: 18-month plan; biomedical and autonomy labs jointly staffed.",
		},
		Pros: []string{
			"Novel readiness metric",
			"Publishable research depth",
			"Sensor stack already validated",
		},
		Cons: []string{
			"Privacy review required for biometric data",
		},
		Summary: "Highest research novelty; production fit depends on privacy and sensor cost decisions.",
		Assets: model.Assets{Images: []model.ImageAsset{}},
	},
	{
		ID:         "wpi",
		Name:       "Westfield Polytechnic",
		Abbr:       "WPI",
		ThemeColor: "bg-amber-600",
		LogoLetter: "W",
		Concept:    "Deliver a production-grade evaluation toolkit that scores road feel and cockpit cues on every software release.",
		Extracts: []string{
			"Background: subjective ride clinics do not scale with OTA release cadence.",
			"Design rationale: turn expert ratings into regression tests on recorded drives.",
			"Plan: metric definition, data pipeline, release gate integration.",
			"Execution: 9-month plan; software engineering team with prior OEM tooling delivery.",
		},
		Pros: []string{
			"Fastest to production",
			"Reusable across vehicle programs",
		},
		Cons: []string{
			"Little new research",
			"Depends on other partners for the underlying models",
		},
		Summary: "Lowest risk and quickest payback; complements rather than replaces a research partner.",
		Assets: model.Assets{Images: []model.ImageAsset{}},
	},
}

var seedSchedule = []model.ScheduleEntry{
	{ID: "kickoff", Date: "2025.09", Title: "Program kickoff", Description: "Contracts signed, joint teams formed.", Color: "bg-blue-500"},
	{ID: "midterm", Date: "2026.01", Title: "Mid-term review", Description: "Prototype demos and budget checkpoint.", Color: "bg-violet-500"},
	{ID: "vehicle", Date: "2026.06", Title: "In-vehicle validation", Description: "Closed-course trials on production platforms.", Color: "bg-emerald-500"},
	{ID: "final", Date: "2027.02", Title: "Final acceptance", Description: "Deliverables accepted and results published.", Color: "bg-amber-500"},
}
