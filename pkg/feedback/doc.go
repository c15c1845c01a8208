// Package feedback turns a finished interview transcript into a structured
// coaching report using a text model.
//
// Generators ask the model for JSON matching the Report schema. Gemini is
// driven through ResponseSchema, OpenAI through a strict json_schema
// response format. Model output that is almost JSON is repaired before
// decoding.
package feedback
