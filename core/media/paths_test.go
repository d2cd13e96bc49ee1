package media

import "testing"

func TestPathResolution(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"artist dir", ArtistDir("Dj-Pepe"), "artist/Dj-Pepe"},
		{"event dir", EventDir("Summer-Closing-2025"), "images/events/Summer-Closing-2025"},
		{"audio prefix", AudioPrefix("Night-Drive"), "Night-Drive."},
		{"artwork prefix", ArtworkPrefix("Night-Drive"), "Night-Drive-icon."},
		{"avatar name", AssetName(AvatarPrefix, ".png"), "avatar.png"},
		{"image name", AssetName(ImagePrefix, ".webp"), "image.webp"},
		{"audio name", AssetName(AudioPrefix("Night-Drive"), ".mp3"), "Night-Drive.mp3"},
		{"artwork name", AssetName(ArtworkPrefix("Night-Drive"), ".jpg"), "Night-Drive-icon.jpg"},
		{"extension without dot", AssetName(AvatarPrefix, "jpg"), "avatar.jpg"},
		{"empty extension", AssetName(AvatarPrefix, ""), "avatar.bin"},
		{"intro video", IntroVideoPath, "videos/intro.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestAudioPrefixDoesNotMatchArtwork(t *testing.T) {
	// "Night-Drive." must not prefix-match "Night-Drive-icon.jpg",
	// otherwise replacing the audio would delete the artwork.
	audio := AudioPrefix("Night-Drive")
	artwork := AssetName(ArtworkPrefix("Night-Drive"), ".jpg")
	if len(artwork) >= len(audio) && artwork[:len(audio)] == audio {
		t.Errorf("audio prefix %q matches artwork name %q", audio, artwork)
	}
}
