package phptoken

import (
	"time"

	"github.com/gonkalabs/decomment/internal/sanitize/delegate"
)

// tokenScript reads PHP source on stdin and prints the byte range of every
// T_COMMENT and T_DOC_COMMENT token. TOKEN_PARSE makes token_get_all parse
// the file, so malformed source throws and exits 1.
const tokenScript = `$src = stream_get_contents(STDIN);
try {
    $tokens = token_get_all($src, TOKEN_PARSE);
} catch (Throwable $e) {
    fwrite(STDERR, "tokenize failed: " . $e->getMessage() . "\n");
    exit(1);
}
$out = [];
$pos = 0;
foreach ($tokens as $t) {
    $s = is_array($t) ? $t[1] : $t;
    if (is_array($t) && ($t[0] === T_COMMENT || $t[0] === T_DOC_COMMENT)) {
        $out[] = [$pos, $pos + strlen($s)];
    }
    $pos += strlen($s);
}
echo json_encode($out);
`

// NewDelegate returns a Tokenizer that runs php's token_get_all. A zero
// timeout lets the subprocess run until it exits.
func NewDelegate(php string, timeout time.Duration) delegate.Command {
	if php == "" {
		php = "php"
	}
	return delegate.Command{Path: php, Args: []string{"-r", tokenScript}, Timeout: timeout}
}
