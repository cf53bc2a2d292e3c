package mock

import "context"

type Fetcher struct {
	Text  string
	Err   error
	Calls []string
}

func (f *Fetcher) Resolve(ctx context.Context, url string) (string, error) {
	_ = ctx
	f.Calls = append(f.Calls, url)
	if f.Err != nil {
		return "", f.Err
	}
	return f.Text, nil
}
