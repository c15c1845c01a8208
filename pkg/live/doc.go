// Package live provides bidirectional streaming sessions with a real-time
// voice model.
//
// A Transport opens a Session. Outbound, the caller sends PCM16 audio frames
// and text turns. Inbound payloads arrive as Message values through
// Callbacks, which are invoked from the session's reader goroutine in arrival
// order:
//
//	OnOpen → OnMessage* → [OnError] → OnClose
//
// OnClose is always the last callback and fires exactly once, whether the
// close was initiated locally, by the server, or by a transport failure.
//
// Two backends are provided:
//
//   - Gemini: Gemini Live through google.golang.org/genai (16 kHz in, 24 kHz out)
//   - OpenAI: OpenAI Realtime over a WebSocket (24 kHz in and out)
package live
