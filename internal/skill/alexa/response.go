package alexa

// Reply is the outcome of one turn: what to speak, and whether the session
// stays open waiting for more input.
type Reply struct {
	// Text is the spoken reply. Empty means respond silently (only the
	// SessionEndedRequest path does this).
	Text string
	// KeepOpen keeps the session listening for a follow-up utterance.
	KeepOpen bool
}

// Ask builds a Reply that speaks text and keeps the session open.
func Ask(text string) Reply {
	return Reply{Text: text, KeepOpen: true}
}

// Tell builds a final Reply that speaks text and ends the session.
func Tell(text string) Reply {
	return Reply{Text: text}
}

// ResponseEnvelope is the platform's outbound response.
type ResponseEnvelope struct {
	Version           string         `json:"version"`
	SessionAttributes map[string]any `json:"sessionAttributes,omitempty"`
	Response          Response       `json:"response"`
}

// Response is the spoken part of the envelope.
type Response struct {
	OutputSpeech     *OutputSpeech `json:"outputSpeech,omitempty"`
	Reprompt         *Reprompt     `json:"reprompt,omitempty"`
	ShouldEndSession bool          `json:"shouldEndSession"`
}

// OutputSpeech is plain-text speech.
type OutputSpeech struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Reprompt is spoken when the session is open and the user stays silent.
type Reprompt struct {
	OutputSpeech *OutputSpeech `json:"outputSpeech,omitempty"`
}

// Envelope converts a Reply plus the turn's (possibly updated) session
// attributes into the platform response envelope.  A kept-open session gets
// an empty reprompt, mirroring how the session is held open without
// re-speaking anything.
func (r Reply) Envelope(sessionAttributes map[string]any) ResponseEnvelope {
	env := ResponseEnvelope{
		Version:           "1.0",
		SessionAttributes: sessionAttributes,
		Response: Response{
			ShouldEndSession: !r.KeepOpen,
		},
	}
	if r.Text != "" {
		env.Response.OutputSpeech = &OutputSpeech{Type: "PlainText", Text: r.Text}
	}
	if r.KeepOpen {
		env.Response.Reprompt = &Reprompt{
			OutputSpeech: &OutputSpeech{Type: "PlainText", Text: ""},
		}
	}
	return env
}
