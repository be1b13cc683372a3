// Package dispatch turns decoded protocol packets into chat events.
//
// The protocol package only guarantees that each batch fragment contains a
// '{'. This package parses each fragment as JSON, looks at its "cmd" field
// and builds a typed event:
//
//   - DANMU_MSG  -> DanmakuEvent (info[1] text, info[2][1] sender)
//   - SEND_GIFT  -> GiftEvent (data.uname, data.action, data.giftName, data.num)
//   - WELCOME    -> WelcomeEvent (data.uname)
//   - popularity packets -> PopularityEvent
//   - join acknowledgements -> JoinEvent
//
// Control characters are removed from every user-supplied string, so events
// are safe to print to a terminal. Unknown commands are ignored. Malformed fragments are logged and skipped
// without affecting the rest of the packet.
//
// Events are delivered to a Handler. LogHandler, PrintHandler and
// MultiHandler cover the common cases; the ui and metrics packages provide
// their own.
package dispatch
