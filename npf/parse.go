package npf

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoContent is returned when input does not look like NPF.
var ErrNoContent = errors.New("no NPF content found")

// UnmarshalJSON selects block variant based on "type" field.
func (b *ContentBlock) UnmarshalJSON(data []byte) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("unable to decode content block: %w", err)
	}

	*b = ContentBlock{Type: BlockType(head.Type)}

	var (
		target any
		err    error
	)
	switch b.Type {
	case BlockAudio:
		b.Audio = &AudioBlock{}
		target = b.Audio
	case BlockImage:
		b.Image = &ImageBlock{}
		target = b.Image
	case BlockLink:
		b.Link = &LinkBlock{}
		target = b.Link
	case BlockPaywall:
		b.Paywall = &PaywallBlock{}
		target = b.Paywall
	case BlockPoll:
		b.Poll = &PollBlock{}
		target = b.Poll
	case BlockText:
		b.Text = &TextBlock{}
		target = b.Text
	case BlockVideo:
		b.Video = &VideoBlock{}
		target = b.Video
	default:
		b.Unknown = &UnknownBlock{Type: head.Type}
		target = &b.Unknown.Raw
	}
	if err = json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("unable to decode %q content block: %w", head.Type, err)
	}
	return nil
}

// MarshalJSON writes variant payload with its "type" field.
func (b ContentBlock) MarshalJSON() ([]byte, error) {
	var payload any
	switch b.Type {
	case BlockAudio:
		payload = b.Audio
	case BlockImage:
		payload = b.Image
	case BlockLink:
		payload = b.Link
	case BlockPaywall:
		payload = b.Paywall
	case BlockPoll:
		payload = b.Poll
	case BlockText:
		payload = b.Text
	case BlockVideo:
		payload = b.Video
	default:
		if b.Unknown != nil {
			return json.Marshal(b.Unknown.Raw)
		}
		return json.Marshal(map[string]string{"type": string(b.Type)})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	fields["type"], _ = json.Marshal(b.Type)
	return json.Marshal(fields)
}

// UnmarshalJSON accepts empty array Tumblr sometimes sends in place of
// attribution object.
func (a *Attribution) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		*a = Attribution{}
		return nil
	}
	type plain Attribution
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unable to decode attribution: %w", err)
	}
	*a = Attribution(v)
	return nil
}

// DecodePosts decodes NPF JSON. Accepted shapes are: single post object,
// array of content blocks (anonymous post), array of posts and API envelopes
// {"posts":[...]} or {"response":{"posts":[...]}}.
func DecodePosts(data []byte) ([]Post, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrNoContent
	}

	switch data[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("unable to decode array: %w", err)
		}
		if len(items) == 0 {
			return nil, ErrNoContent
		}
		if isBlock(items[0]) {
			var post Post
			if err := json.Unmarshal(data, &post.Content); err != nil {
				return nil, fmt.Errorf("unable to decode content blocks: %w", err)
			}
			return []Post{post}, nil
		}
		return decodePostList(data)

	case '{':
		var envelope struct {
			Posts    json.RawMessage `json:"posts"`
			Response *struct {
				Posts json.RawMessage `json:"posts"`
			} `json:"response"`
			Content json.RawMessage `json:"content"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("unable to decode object: %w", err)
		}
		switch {
		case envelope.Response != nil && len(envelope.Response.Posts) > 0:
			return decodePostList(envelope.Response.Posts)
		case len(envelope.Posts) > 0:
			return decodePostList(envelope.Posts)
		case len(envelope.Content) > 0:
			var post Post
			if err := json.Unmarshal(data, &post); err != nil {
				return nil, fmt.Errorf("unable to decode post: %w", err)
			}
			return []Post{post}, nil
		}
		return nil, ErrNoContent
	}
	return nil, fmt.Errorf("unexpected input starting with %q: %w", data[0], ErrNoContent)
}

func decodePostList(data []byte) ([]Post, error) {
	var posts []Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("unable to decode posts: %w", err)
	}
	return posts, nil
}

// isBlock distinguishes content block from post object. Posts returned by
// API carry "type":"blocks" too, so presence of "content" decides.
func isBlock(item json.RawMessage) bool {
	var head struct {
		Type    string          `json:"type"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(item, &head); err != nil {
		return false
	}
	return head.Content == nil && head.Type != ""
}
