package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	distributionDomain "github.com/allisson/reelcast/internal/distribution/domain"
)

// Adapter publishes one asset to one platform and returns the platform's post id.
type Adapter interface {
	Name() string
	Post(ctx context.Context, input distributionDomain.PostInput, creds map[string]string) (string, error)
}

// New builds the adapter for config.Kind.
func New(config distributionDomain.PlatformConfig, client *http.Client) (Adapter, error) {
	config = config.WithDefaults()
	switch config.Kind {
	case distributionDomain.KindNativeUpload:
		return &NativeUploadAdapter{base: newBase(config, client)}, nil
	case distributionDomain.KindURLReference:
		return &URLReferenceAdapter{base: newBase(config, client)}, nil
	case distributionDomain.KindLink:
		return &LinkAdapter{base: newBase(config, client)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", distributionDomain.ErrUnknownPlatformKind, config.Kind)
	}
}

// NativeUploadAdapter downloads the asset and streams it to the platform as a multipart
// upload.
type NativeUploadAdapter struct {
	base
}

// Post implements Adapter.
func (a *NativeUploadAdapter) Post(
	ctx context.Context,
	input distributionDomain.PostInput,
	creds map[string]string,
) (string, error) {
	if err := a.wait(ctx); err != nil {
		return "", err
	}

	download, err := http.NewRequestWithContext(ctx, http.MethodGet, input.AssetURL, nil)
	if err != nil {
		return "", distributionDomain.Terminal(fmt.Errorf("failed to build download request: %w", err))
	}
	asset, err := a.client.Do(download)
	if err != nil {
		return "", classify(err)
	}
	if asset.StatusCode != http.StatusOK {
		defer asset.Body.Close() //nolint:errcheck
		return "", classify(fmt.Errorf("asset download: %w", readStatusError(asset)))
	}

	body, writer := io.Pipe()
	form := multipart.NewWriter(writer)
	go func() {
		defer asset.Body.Close() //nolint:errcheck
		writer.CloseWithError(writeUpload(form, input, asset.Body))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, expand(a.config.Endpoint, creds), body)
	if err != nil {
		_ = body.Close()
		return "", distributionDomain.Terminal(fmt.Errorf("failed to build upload request: %w", err))
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	return a.send(req, creds)
}

func writeUpload(form *multipart.Writer, input distributionDomain.PostInput, asset io.Reader) error {
	fields := [][2]string{{"caption", input.Caption}, {"title", input.Title}, {"reference", input.RecordID}}
	for _, field := range fields {
		if err := form.WriteField(field[0], field[1]); err != nil {
			return err
		}
	}

	part, err := form.CreateFormFile("video", uploadName(input))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, asset); err != nil {
		return err
	}
	return form.Close()
}

func uploadName(input distributionDomain.PostInput) string {
	name := path.Base(strings.SplitN(input.AssetURL, "?", 2)[0])
	if name == "" || name == "." || name == "/" {
		return input.RecordID + ".mp4"
	}
	return name
}

// URLReferenceAdapter creates a media container from the asset URL, then publishes it.
type URLReferenceAdapter struct {
	base
}

type containerRequest struct {
	VideoURL string `json:"video_url"`
	Caption  string `json:"caption"`
}

type publishRequest struct {
	CreationID string `json:"creation_id"`
}

// Post implements Adapter.
func (a *URLReferenceAdapter) Post(
	ctx context.Context,
	input distributionDomain.PostInput,
	creds map[string]string,
) (string, error) {
	if err := a.wait(ctx); err != nil {
		return "", err
	}

	containerID, err := a.postJSON(ctx, a.config.Endpoint, containerRequest{
		VideoURL: input.AssetURL,
		Caption:  input.Caption,
	}, creds)
	if err != nil {
		return "", fmt.Errorf("create container: %w", err)
	}

	postID, err := a.postJSON(ctx, a.config.PublishEndpoint, publishRequest{CreationID: containerID}, creds)
	if err != nil {
		return "", fmt.Errorf("publish container %s: %w", containerID, err)
	}
	return postID, nil
}

// LinkAdapter posts the caption followed by the asset URL.
type LinkAdapter struct {
	base
}

type linkRequest struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Post implements Adapter.
func (a *LinkAdapter) Post(
	ctx context.Context,
	input distributionDomain.PostInput,
	creds map[string]string,
) (string, error) {
	if err := a.wait(ctx); err != nil {
		return "", err
	}

	text := strings.TrimSpace(input.Caption + "\n\n" + input.AssetURL)
	return a.postJSON(ctx, a.config.Endpoint, linkRequest{Text: text, URL: input.AssetURL}, creds)
}
