package draft

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	response string
	err      error
	gotUser  string
}

func (f *fakeClient) Message(ctx context.Context, system, user string) (string, error) {
	f.gotUser = user
	return f.response, f.err
}

func TestGenerate(t *testing.T) {
	c := &fakeClient{response: `{"subject": "Quick question", "body": "Hi Jane,"}`}

	d, err := Generate(context.Background(), c, "Jane Doe", "Acme builds rockets")
	require.NoError(t, err)
	assert.Equal(t, "Quick question", d.Subject)
	assert.Equal(t, "Hi Jane,", d.Body)
	assert.Contains(t, c.gotUser, "Jane Doe")
	assert.Contains(t, c.gotUser, "Acme builds rockets")
}

func TestGenerateFencedJSON(t *testing.T) {
	c := &fakeClient{response: "Here you go:\n```json\n{\"subject\": \"Hello\", \"body\": \"Hi\"}\n```"}

	d, err := Generate(context.Background(), c, "Jane Doe", "Acme")
	require.NoError(t, err)
	assert.Equal(t, "Hello", d.Subject)
	assert.Equal(t, "Hi", d.Body)
}

func TestGenerateNonJSONFallsBackToRawBody(t *testing.T) {
	c := &fakeClient{response: "Subject: Hello\n\nHi Jane, just plain text."}

	d, err := Generate(context.Background(), c, "Jane Doe", "Acme")
	require.NoError(t, err)
	assert.Empty(t, d.Subject)
	assert.Equal(t, c.response, d.Body)
}

func TestGenerateMissingInputs(t *testing.T) {
	_, err := Generate(context.Background(), &fakeClient{}, "", "Acme")
	require.Error(t, err)

	_, err = Generate(context.Background(), &fakeClient{}, "Jane Doe", "")
	require.Error(t, err)
}

func TestGenerateClientError(t *testing.T) {
	c := &fakeClient{err: eris.New("overloaded")}

	_, err := Generate(context.Background(), c, "Jane Doe", "Acme")
	require.Error(t, err)
}
