// Package interview generates interview answers and streams them to a
// client as they are produced.
//
// A Session carries the candidate's context (company, role, summarized job
// description and resume) plus a short memory of previous answers. For a
// spoken question, Answerer renders the session into a prompt, lets the
// model optionally call the web_search tool, and streams the answer back as
// a Turn. For a screenshot of a coding problem, Vision extracts the problem,
// solves it, cleans the structured solution with Sanitize and re-chunks it
// so a client can render a summary and a full answer separately.
//
// Providers sometimes reject a tool call the model emitted in a textual
// form. ExtractQuery recovers the intended search query from the rejection
// text (or from plain content) so the turn can continue as if the tool call
// had succeeded.
//
// Bridge hands a Turn's increments to an asynchronous consumer such as a
// websocket writer, one item at a time.
package interview
