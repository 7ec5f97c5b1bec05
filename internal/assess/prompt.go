package assess

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/medvat/medvat/internal/rubric"
)

// instructionTemplates maps rubric title keywords to the domain-specific
// assessment directives appended to every evaluation prompt. The table is
// checked in order and the first match wins; new domains add a row without
// touching the rest of the pipeline. The generic template is the catch-all.
var instructionTemplates = []struct {
	keyword string
	text    string
}{
	{"Chest Tube", chestTubeDirectives},
	{"Suturing", suturingDirectives},
	{"Suture", suturingDirectives},
	{"Patient Encounter", communicationDirectives},
	{"SP", communicationDirectives},
}

// domainInstructions selects the instruction block for a rubric title.
func domainInstructions(title string) string {
	for _, t := range instructionTemplates {
		if strings.Contains(title, t.keyword) {
			return t.text
		}
	}
	return genericDirectives
}

// BuildPrompt renders the rubric and its domain directives into the single
// evaluation request sent alongside the video. It is a pure function of its
// inputs: the same rubric always produces the same payload.
func BuildPrompt(rb *rubric.Rubric) (string, error) {
	rubricJSON, err := json.MarshalIndent(rb, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize rubric: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("You are an expert medical evaluator. Watch the attached video and assess the performance based strictly on the following rubric.\n\n")
	sb.WriteString("Your goal is to provide feedback that a student can verify. If you claim they 'pecked' during dissection, tell them exactly when it happened so they can watch the video and see it themselves.\n\n")
	sb.WriteString("RUBRIC DEFINITION:\n\n")
	sb.Write(rubricJSON)
	sb.WriteString("\n")
	sb.WriteString(domainInstructions(rb.Title))
	sb.WriteString(scoringProtocol)
	sb.WriteString(outputContract)
	return sb.String(), nil
}

const scoringProtocol = `
INSTRUCTIONS:

1. Provide a score for each item.
   - For 'likert' type: Score 1 (Novice) to 5 (Expert).
   - For 'binary' type: Score 1 (Yes/Done) or 0 (No/Not Done).
   - CRITICAL: Evaluate not just whether steps were completed, but HOW they were performed. Consider patient trauma, pain, and tissue damage in your scoring.
   - CALIBRATION: Remember you are evaluating a novice resident. Distinguish between "inefficient/clumsy" (acceptable for pass, score 3-4) and "dangerous/traumatic" (fail, score 1-2). If the clinical goal is achieved safely, even with inefficiency, mark as Pass but note inefficiency in feedback.

2. GENERAL SAFETY DIRECTIVE: INSTRUMENT HYGIENE & SAFETY
   - Regardless of the specific procedure, you must continuously monitor for 'Instrument Hygiene' violations. If any of the following occur, you must flag them immediately in the commentary and potentially fail the relevant step or the entire proficiency rating if the action is dangerous.

   a. Inappropriate Dual-Use:
      - Instruments must only be used for their intended purpose.
      - CRITICAL FAIL: Using an instrument to dissect, cut, or spread tissue while it is simultaneously holding another object (e.g., a tube, a needle, or gauze). This blunts the instrument, crushes the object, and risks uncontrolled trauma.
      - Example: Dissecting with a Kelly clamp while it is gripping a chest tube.

   b. Uncontrolled Sharps:
      - Watch for needles or scalpels being waved in the air, left on the patient drape, or handled with fingers instead of instruments (unless appropriate).
      - Flag: Ideally, sharps should be "parked" safely or handed off immediately after use.

   c. Loss of Tension/Control:
      - Watch for instruments slipping, requiring repeated re-grasping, or being used with a loose grip that allows the tip to wander.
      - Comment: Note any "fumbling" or "resetting" of the grip as an efficiency issue.

   If a Critical Fail (Rule 2a - Inappropriate Dual-Use) is observed:
      - Mark the relevant step (e.g., "Grasps tube" or "Dissects") as "No".
      - Mark "Proficiency" (if present) as "No".
      - In the feedback, use the phrase: "CRITICAL SAFETY VIOLATION: Instrument Hygiene."

3. Provide 'advice' for every single item based on visual evidence.
   - MANDATORY: If you observe signs of patient trauma, excessive force, repetitive unnecessary motions, or inefficiency, you MUST explicitly mention these in your advice.
   - CALIBRATION: When noting inefficiency (multiple attempts, fumbling), distinguish between "needs improvement" (for clumsy but safe technique) and "critical error" (for dangerous technique). Provide constructive feedback that helps the resident improve.
   - Focus on specific techniques that would reduce patient discomfort and improve outcomes.

4. Provide a 'summative_comment' for the whole procedure.
   - Include an assessment of overall patient impact and technique finesse.
   - CALIBRATION: Acknowledge that novice residents may be slow or clumsy but still proficient if they are safe and achieve the clinical goal. Only fail if there are safety concerns or the procedure was ineffective.
   - Highlight any concerns about patient trauma or inefficient technique, but frame them appropriately for a learning context.

5. MANDATORY TIMESTAMP REQUIREMENT:
   - For any criterion where the score indicates poor performance (e.g., 'No' for binary, or <=3 for Likert), you MUST provide a specific timestamp (MM:SS format) in the 'advice' field citing exactly where the error or inefficient behavior occurred.
   - Example format: "[01:15] The student fumbled the needle driver..."
   - Example format: "[02:32] You performed 5 small spreading motions here instead of one decisive spread..."
   - If multiple issues occur at different times, include multiple timestamps: "[01:15] First issue... [02:30] Second issue..."
   - This makes feedback verifiable and actionable. A student can watch the video at that timestamp and see exactly what you're referring to.
   - Note: Scores of 4-5 (Likert) or 'Yes' (binary) do not require timestamps unless there are specific improvement suggestions.
`

const outputContract = `
OUTPUT FORMAT:

Return ONLY valid JSON. Do not use Markdown code blocks. The JSON must match this structure:

{
    "assessments": [
        { "name": "Criterion Name", "score": 3, "advice": "[01:15] Observation and advice with timestamp..." },
        ...
    ],
    "summative_comment": "Overall feedback..."
}

CRITICAL: Every 'advice' field for scores indicating poor performance (binary 'No' or Likert <=3) MUST include at least one timestamp in [MM:SS] format. This is mandatory for verifiable feedback.
`

const chestTubeDirectives = `
CRITICAL ASSESSMENT DIRECTIVE: PATIENT IMPACT & FINESSE

You must evaluate not just *if* a step was done, but *how* it was done, with a specific focus on patient trauma and pain.

1. Dissection Finesse (The "One-Pass" Rule):
   - Ideal: The practitioner should spread the intercostal muscles firmly and decisively in 1-2 motions to create the track.
   - Red Flag (Pain/Trauma): Watch closely for "pecking," "searching," or repetitive small spreading motions with the Kelly clamp deep in the tissue.
   - Assessment Impact: If you see multiple (>3) separate spreading maneuvers at the same depth, you must downgrade "Economy of Motion" and flag "Dissects with gentle pressure" as a potential failure due to excessive trauma, even if they eventually enter the pleura.
   - Rationale: Repeated spreading of the intercostal muscles is excruciatingly painful for a conscious patient and increases the risk of intercostal nerve injury.

2. Economy of Motion as a Proxy for Competence:
   - Do not rate "Economy of Motion" highly just because the student is moving quickly.
   - Look for *purposeful* movement. Fumbling with the suture, losing the tail, or repeatedly picking up/putting down instruments are signs of cognitive load overload and should lower the score.
   - Watch the blunt dissection closely. Count the number of spreading maneuvers.
   - Ideal technique is 'push, spread, advance.' Repetitive 'pecking' is incorrect.
   - Flag any motion that looks like it would cause unnecessary pain in a conscious patient.

3. Holistic Impact:
   - If a step is technically completed (e.g., the tube goes in) but the technique was traumatic (excessive force, repetitive spreading), the specific step (e.g., "Enters pleura") should be marked as "No" or "Marginal," and the feedback must explicitly mention "patient pain" or "excessive tissue trauma."

CALIBRATION UPDATE: THE "NOVICE CURVE"

You are evaluating a resident in training. Be critical of technique, but pragmatic about scoring.

1. The "Pecking" Rule:
   - Repetitive "pecking" or small spreading motions during dissection are common in novices.
   - Scoring: If the dissection remains safely over the rib and enters the pleura without damaging surrounding structures, mark the step as "YES" (Pass).
   - Feedback: Do NOT fail the step solely for pecking. Instead, use the "Feedback" box to strongly critique the inefficiency and mention the potential for increased patient pain.
   - Fail Criteria: Only mark "No" if the motion creates a false track, slips off the rib dangerously, or is violent/uncontrolled.

2. Proficiency Threshold:
   - A student can demonstrate "Proficiency" (Pass) even with imperfect economy of motion.
   - Proficiency means "Safe to perform under supervision," not "Master surgeon."
   - If the tube is in safely and secured, lean towards a "Yes" on proficiency unless a critical safety violation occurred.
`

const suturingDirectives = `
CRITICAL ASSESSMENT DIRECTIVE: PATIENT IMPACT & FINESSE

You must evaluate not just *if* a step was done, but *how* it was done, with a specific focus on patient trauma and tissue handling.

1. Tissue Handling Finesse:
   - Watch for excessive force or repeated grasping of tissue with forceps, which causes trauma.
   - Multiple attempts to grasp the same tissue indicate poor technique and should lower scores.
   - Look for signs of crushing or tearing tissue during manipulation.

2. Economy of Motion:
   - Do not rate "Economy of Motion" highly just because the student is moving quickly.
   - Look for *purposeful* movement. Dropping instruments, fumbling with sutures, or repeatedly adjusting position are signs of inefficiency and should lower the score.
   - Each motion should have clear intent and contribute to progress.

3. Holistic Impact:
   - If sutures are placed but tissue handling was traumatic (excessive force, repeated grasping), mark "Gentle tissue handling" as low and explicitly mention "patient trauma" or "tissue damage" in feedback.

CALIBRATION DIRECTIVE: DISTINGUISHING "CLUMSY" FROM "UNSAFE"

You are evaluating a *novice resident*, not an expert surgeon. You must distinguish between "inefficient/clumsy" (which is acceptable for a pass) and "dangerous/traumatic" (which is a fail).

1. The "Good Enough" Standard:
   - If the student achieves the clinical goal (e.g., places sutures correctly, closes wound) but takes 2-3 extra attempts or looks stiff/hesitant, mark the step as "Pass" (score 3-4 for likert, "Yes" for binary) but note the inefficiency in the feedback.
   - Only mark a step as "Fail" (score 1-2 for likert, "No" for binary) if the action was *ineffective* (sutures don't hold, wound doesn't close) or *dangerous* (visible tissue damage, excessive bleeding from technique).

2. Evaluating "Clumsiness" vs. "Trauma":
   - Multiple attempts to grasp tissue or place a suture is inefficient but not automatically a failure unless it causes visible tissue damage or is excessive (>5-6 attempts for the same action).
   - If they fumble but eventually place sutures correctly without causing harm, score as "Pass" but downgrade "Economy of Motion" and "Gentle tissue handling" scores.

3. Holistic Proficiency:
   - A student can be "Proficient" (score 3-4) even with poor economy of motion, provided they are safe and achieve the clinical goal. Do not fail the entire procedure solely for slowness, stiffness, or minor inefficiencies.
`

const communicationDirectives = `
CRITICAL ASSESSMENT DIRECTIVE: PATIENT EXPERIENCE & COMMUNICATION

You must evaluate not just *if* communication occurred, but *how* it impacted the patient experience.

1. Empathy & Validation:
   - Look for genuine acknowledgment of patient emotions, not just perfunctory responses.
   - Watch for non-verbal cues that show the practitioner is truly listening and responding to patient concerns.

2. Communication Efficiency:
   - Do not rate highly just because questions were asked quickly.
   - Look for *purposeful* communication that builds rapport and gathers necessary information without causing patient distress.
   - Repetitive questioning or asking the same thing multiple ways indicates poor communication skills.

3. Holistic Impact:
   - If communication occurred but the patient appeared uncomfortable, anxious, or confused, mark relevant items lower and explicitly mention "patient distress" or "communication breakdown" in feedback.
`

const genericDirectives = `
CRITICAL ASSESSMENT DIRECTIVE: PATIENT IMPACT & FINESSE

You must evaluate not just *if* steps were completed, but *how* they were performed, with a specific focus on patient safety, comfort, and tissue trauma.

1. Technique Finesse:
   - Watch for signs of excessive force, repetitive unnecessary motions, or fumbling that could cause patient discomfort or trauma.
   - Multiple attempts to complete the same step indicate poor technique and should lower scores.

2. Economy of Motion:
   - Do not rate "Economy of Motion" highly just because the student is moving quickly.
   - Look for *purposeful* movement. Dropping instruments, fumbling, or repeatedly adjusting position are signs of inefficiency and should lower the score.

3. Holistic Impact:
   - If steps are technically completed but the technique was traumatic or inefficient, mark relevant items lower and explicitly mention "patient trauma," "excessive force," or "inefficient technique" in feedback.

CALIBRATION DIRECTIVE: DISTINGUISHING "CLUMSY" FROM "UNSAFE"

You are evaluating a *novice resident*, not an expert surgeon. You must distinguish between "inefficient/clumsy" (which is acceptable for a pass) and "dangerous/traumatic" (which is a fail).

1. The "Good Enough" Standard:
   - If the student achieves the clinical goal but takes 2-3 extra attempts or looks stiff/hesitant, mark the step as "Pass" (score 3-4 for likert, "Yes" for binary) but note the inefficiency in the feedback.
   - Only mark a step as "Fail" (score 1-2 for likert, "No" for binary) if the action was *ineffective* (didn't achieve the goal) or *dangerous* (risked patient harm).

2. Evaluating Inefficiency vs. Danger:
   - Multiple attempts or fumbling is inefficient but not automatically a failure unless it causes harm or is excessive (>5-6 attempts for the same action).
   - If they eventually complete the step safely and effectively, score as "Pass" but downgrade efficiency-related scores.

3. Holistic Proficiency:
   - A student can be "Proficient" (score 3-4) even with poor economy of motion, provided they are safe and achieve the clinical goal. Do not fail the entire procedure solely for slowness, stiffness, or minor inefficiencies.
`
