package bot

// Message is one chat event delivered by the dispatch layer.
type Message struct {
	Channel string
	User    string
	Text    string
}

// Reply is plain text handed back to the dispatch layer, which owns
// presentation concerns such as bolding, coloring and addressing mode.
type Reply struct {
	Text    string
	Private bool
	Action  bool
}

func reply(text string) Reply {
	return Reply{Text: text}
}

func privateReply(text string) Reply {
	return Reply{Text: text, Private: true}
}

func actionReply(text string) Reply {
	return Reply{Text: text, Action: true}
}
