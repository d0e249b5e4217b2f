package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dockhand/pkg/engine"
)

func TestCleanToken(t *testing.T) {
	assert.Equal(t, "web", cleanToken("web,"))
	assert.Equal(t, "8080", cleanToken("8080?"))
	assert.Equal(t, "db", cleanToken("\"db\""))
	assert.Equal(t, "", cleanToken("!?"))
}

func TestFirstInt(t *testing.T) {
	n, ok := firstInt("exit code 137 means what?")
	require.True(t, ok)
	assert.Equal(t, 137, n)

	_, ok = firstInt("no numbers here")
	assert.False(t, ok)
}

func TestIntAfterWord(t *testing.T) {
	n, ok := intAfterWord("check port 8080 please", "port")
	require.True(t, ok)
	assert.Equal(t, 8080, n)

	n, ok = intAfterWord("check port number 443", "port")
	require.True(t, ok)
	assert.Equal(t, 443, n, "skips non-numeric tokens after the word")

	_, ok = intAfterWord("check port please", "port")
	assert.False(t, ok)

	_, ok = intAfterWord("8080 port", "port")
	assert.False(t, ok, "number before the word does not count")
}

func TestParseCreateOptions_FullPhrase(t *testing.T) {
	opts := parseCreateOptions("create a container from nginx named web on port 8080")
	assert.Equal(t, engine.CreateOptions{Image: "nginx", Name: "web", Port: 8080}, opts)
}

func TestParseCreateOptions_PartialFields(t *testing.T) {
	opts := parseCreateOptions("run something from redis")
	assert.Equal(t, "redis", opts.Image)
	assert.Empty(t, opts.Name)
	assert.Zero(t, opts.Port)
}

func TestParseCreateOptions_OnWithoutPortIsIgnored(t *testing.T) {
	opts := parseCreateOptions("create from nginx on my laptop")
	assert.Equal(t, "nginx", opts.Image)
	assert.Zero(t, opts.Port)
}

func TestParseCreateOptions_PunctuationStripped(t *testing.T) {
	opts := parseCreateOptions("create from nginx, named web.")
	assert.Equal(t, "nginx", opts.Image)
	assert.Equal(t, "web", opts.Name)
}

func TestFindContainerByFragment(t *testing.T) {
	containers := testContainers()

	c := findContainerByFragment(containers, "WEB")
	require.NotNil(t, c)
	assert.Equal(t, "web", c.Name)

	c = findContainerByFragment(containers, "work")
	require.NotNil(t, c)
	assert.Equal(t, "worker", c.Name)

	assert.Nil(t, findContainerByFragment(containers, "ghost"))
	assert.Nil(t, findContainerByFragment(containers, ""))
}

func TestFindContainerInQuestion(t *testing.T) {
	containers := testContainers()

	c := findContainerInQuestion(containers, "show me logs for db please")
	require.NotNil(t, c)
	assert.Equal(t, "db", c.Name)

	assert.Nil(t, findContainerInQuestion(containers, "show me logs"))
}

func TestContainsAny(t *testing.T) {
	assert.True(t, containsAny("show stopped containers", "show stopped", "list stopped"))
	assert.False(t, containsAny("hello", "status", "show"))
}
