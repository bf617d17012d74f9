package image

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/BaSui01/trailerflow/types"
)

// 提供方定义了图像生成提供者接口.
type Provider interface {
	// GenerateImage 从文本提示生成一张图像，返回编码后的图像字节.
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)

	// 名称返回提供者名称 。
	Name() string
}

func providerErrorf(provider, format string, args ...any) *types.Error {
	return types.NewErrorf(types.ErrProvider, format, args...).WithProvider(provider)
}

// fetchImage downloads an image URL returned by a provider.
func fetchImage(ctx context.Context, client *http.Client, provider, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, providerErrorf(provider, "invalid image url %q", url).WithCause(err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, providerErrorf(provider, "image download failed").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, providerErrorf(provider, "image download error: status=%d body=%s", resp.StatusCode, string(errBody)).
			WithHTTPStatus(resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, providerErrorf(provider, "image download interrupted").WithCause(err)
	}
	if len(data) == 0 {
		return nil, providerErrorf(provider, "downloaded image is empty")
	}
	return data, nil
}

func emptyPrompt(provider string) error {
	return types.NewError(types.ErrValidation, fmt.Sprintf("%s: image prompt is required", provider))
}
