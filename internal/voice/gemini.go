package voice

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// InputMIMEType is what clients must send: 16 kHz mono PCM.
const InputMIMEType = "audio/pcm;rate=16000"

// GeminiLive connects sessions through the Gemini Live API.
type GeminiLive struct {
	Client *genai.Client
}

func (g GeminiLive) Connect(ctx context.Context, cfg Config) (Stream, error) {
	if g.Client == nil {
		return nil, fmt.Errorf("gemini live: no client")
	}

	lc := &genai.LiveConnectConfig{
		ResponseModalities:       []genai.Modality{genai.ModalityAudio},
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
	}
	if cfg.SystemInstruction != "" {
		lc.SystemInstruction = genai.NewContentFromText(cfg.SystemInstruction, genai.RoleUser)
	}
	if cfg.Voice != "" {
		lc.SpeechConfig = &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: cfg.Voice},
			},
		}
	}

	sess, err := g.Client.Live.Connect(ctx, cfg.Model, lc)
	if err != nil {
		return nil, fmt.Errorf("gemini live connect: %w", err)
	}
	return &liveStream{sess: sess}, nil
}

type liveStream struct {
	sess *genai.Session
}

func (l *liveStream) SendAudio(_ context.Context, pcm []byte) error {
	return l.sess.SendRealtimeInput(genai.LiveRealtimeInput{
		Audio: &genai.Blob{Data: pcm, MIMEType: InputMIMEType},
	})
}

// Receive blocks on the websocket; Close unblocks it.
func (l *liveStream) Receive(_ context.Context) (Chunk, error) {
	msg, err := l.sess.Receive()
	if err != nil {
		return Chunk{}, err
	}

	var ch Chunk
	sc := msg.ServerContent
	if sc == nil {
		return ch, nil
	}
	ch.TurnComplete = sc.TurnComplete
	ch.Interrupted = sc.Interrupted
	if sc.OutputTranscription != nil {
		ch.Transcript = sc.OutputTranscription.Text
	}
	if sc.ModelTurn != nil {
		for _, p := range sc.ModelTurn.Parts {
			if p == nil || p.InlineData == nil {
				continue
			}
			ch.Audio = append(ch.Audio, p.InlineData.Data...)
			ch.MIMEType = p.InlineData.MIMEType
		}
	}
	return ch, nil
}

func (l *liveStream) Close() error {
	return l.sess.Close()
}
