// Package prompt builds the ordered instruction blocks sent to the
// model: the conversational directive for a given operating mode, the
// generation trigger carrying the BRD template and the critique
// trigger used by the second pipeline pass.
package prompt

import (
	"fmt"
	"time"

	"github.com/rawitjan/Forte-hackathon/internal/config"
)

// Sentinels the critique pass is instructed to wrap the final document
// in, so it can be cut out of surrounding chatter unambiguously.
const (
	StartSentinel = "___START_DOCUMENT___"
	EndSentinel   = "___END_DOCUMENT___"
)

const basePersona = `You are a Senior Business Analyst at ForteBank.
Your job is to produce complete technical documentation (BRD) combining a business (Agile) and a technical (Waterfall) perspective.
You must give priority attention to information security (InfoSec) concerns.`

var modeFragments = map[string]string{
	config.ModeNewProduct: `FOCUS: Customer journey and application features.
IMPORTANT: Write User Stories to capture value, and FRs for the technical implementation.`,

	config.ModeAPIIntegration: `FOCUS: System-to-system interaction.
IMPORTANT: User Stories here describe the needs of systems (as System A, I want to send a request...), and FRs describe the contracts.`,

	config.ModeReporting: `FOCUS: Data and formulas.
IMPORTANT: User Stories describe the insight needs of business users.`,
}

const behaviorRules = `### INSTRUCTIONS
1. **Step-by-Step:** Ask 1-2 questions at a time.
2. **Context:** Keep bank-grade security (ForteBank) in mind.
3. **Output:** Do not generate the document until you receive the SYSTEM_GENERATE command.`

// Compose builds the full conversational directive for an operating
// mode. Unrecognized modes fall back to the default mode. Same mode,
// same bytes.
func Compose(mode string) string {
	fragment, ok := modeFragments[mode]
	if !ok {
		mode = config.DefaultMode
		fragment = modeFragments[mode]
	}
	return fmt.Sprintf("%s\n\n### OPERATING MODE: %s\n%s\n\n%s", basePersona, mode, fragment, behaviorRules)
}

const generationTemplate = `COMMAND: SYSTEM_GENERATE.

Produce the BRD document, strictly following the template below.

# Business Requirements Document (BRD): [Project name]
**Project:** [Name]
**Date:** %s
**Author:** Forte AI Analyst

## 1. Introduction
### 1.1. Business Goal
(Why are we doing this? Expected effect)

### 1.2. Project Scope
* **In MVP:** ...
* **Out of MVP:** ...

## 2. User Stories
*Describe user needs in Agile format.*

| ID | Role | I want (Action) | So that (Value) |
|---|---|---|---|
| US.001 | [Role] | ... | ... |
| US.002 | [Role] | ... | ... |
*(Add at least 3-5 stories)*

## 3. Functional Requirements
*Technical breakdown of the requirements. Every requirement must carry a unique ID (FR.xxx).*

* **FR.001:** The system shall...
* **FR.002:** When button X is pressed, the system performs Y...
* **FR.003:** [Describe field validation]...
* **FR.004:** [Describe processing logic]...

## 4. Logic and Processes
### 4.1. Happy Path
(Step-by-step description)

### 4.2. Error Handling (Edge Cases)
(What happens when a service is unavailable?)

## 5. Security and Compliance KPIs (MANDATORY)
* **Authentication:** (2FA, FaceID, SMS for amounts > 50 000 KZT)
* **Access control (RBAC):** (Roles, access matrices)
* **Data protection:** (TLS 1.2+ encryption, PAN/PII masking)
* **Limits and anti-fraud:** (Amount limits, duplicate checks)
* **Logging:** (Audit log of actions)

## 6. Non-Functional Requirements (NFR)
* **NFR.001 (Performance):** API response time under 3 seconds.
* **NFR.002 (Availability):** SLA 99.9%%.
* **NFR.003 (Scalability):** ...

## 7. Process Diagram (Mermaid State Diagram)
Insert the diagram code below. Use **stateDiagram-v2**.

**MERMAID RULES:**
1. ` + "`stateDiagram-v2`" + `
2. State IDs use English letters ONLY, no spaces (for example ` + "`CheckLimit`" + `).
3. Put display text after a colon.

Example:
` + "```mermaid" + `
stateDiagram-v2
    [*] --> Init
    Init --> Process : Start
    Process --> Success : OK
` + "```"

// GenerationTrigger builds the draft-pass command carrying the BRD
// skeleton. The date is the only variable part.
func GenerationTrigger(today time.Time) string {
	return fmt.Sprintf(generationTemplate, today.Format("2006-01-02"))
}

// CritiqueTrigger instructs the model to self-review the draft and
// return the corrected full document between the sentinels.
const CritiqueTrigger = `[SELF-REVIEW MODE]
You are a Lead Architect. Review the document.

1. **User Stories:** Is section 2 with User Stories present?
2. **FR/NFR:** Are FR.xxx and NFR.xxx codes used?
3. **Security:** Is section 5 filled in?
4. **Mermaid:** Check the ` + "`stateDiagram-v2`" + ` syntax.

RETURN ONLY THE CORRECTED DOCUMENT TEXT INSIDE THE MARKERS:
` + StartSentinel + `
...text...
` + EndSentinel
