/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package feedback

import "chainguard.dev/gradeflow/prompt"

var technicalPrompt = prompt.Must(prompt.New(`You are reviewing a student's data-analysis code for a graded assignment.

Rubric:
{{rubric}}

Static validation findings:
{{validation}}

Output comparison against the reference solution:
{{comparison}}

Reference solution code:
{{reference_code}}

Student code:
{{student_code}}

Evaluate the correctness of the student's approach. The output comparison is
your primary evidence: if a cell's output matches the reference, do NOT
penalize stylistic or naming differences in the code that produced it. Only
flag cells whose outputs mismatch, error, or are missing, and explain what
likely went wrong in each.

Respond with a single JSON object matching this schema, and nothing else:
{{response_schema}}`))

var narrativePrompt = prompt.Must(prompt.New(`You are reviewing a student's written answers for a graded data-analysis assignment.

Rubric:
{{rubric}}

Static validation findings:
{{validation}}

Reference answers:
{{reference_narrative}}

Student answers:
{{student_narrative}}

Evaluate whether the student's written answers demonstrate understanding.
Accept answers that are semantically equivalent to the reference regardless
of exact wording, length, or phrasing. Credit correct reasoning even when the
vocabulary differs from the reference.

Respond with a single JSON object matching this schema, and nothing else:
{{response_schema}}`))
