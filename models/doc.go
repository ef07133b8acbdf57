// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines records, aggregated views, and request/response types.

# Records

Rows as stored by the record store:

  - Grant: funded opportunity, lifecycle status and awardee
  - Question: one prompt of a grant (short answer or multiple choice)
  - Application: one applicant's submission, shortlist flag, acceptance status
  - Answer: the response to one question
  - Profile, Lab: read-only projections used for display

# Aggregated Views

AggregatedApplication stitches an application together with its applicant
profile, lab and answers. Every reference is wrapped in a Lookup, which is
either Resolved(value) or Unresolved(reason) with a placeholder value:

	if !app.Applicant.Resolved {
		log.Println(app.Applicant.Reason) // "profile not found"
	}

GrantState is the grant detail view, including the winner once awarded.

# Constants

Grant status values:

	StatusOpen    = "open"
	StatusAwarded = "awarded"

Question types:

	QuestionShortAnswer    = "short_answer"
	QuestionMultipleChoice = "multiple_choice"
*/
package models
