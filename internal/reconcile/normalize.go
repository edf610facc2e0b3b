package reconcile

import (
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// Normalize devolve a chave de comparação de um nome: sem acento, minúsculo,
// sem espaços nas pontas e com espaços internos colapsados.
// Qualquer valor que não seja texto (nil, número, objeto) vira "".
func Normalize(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.ToLower(unidecode.Unidecode(s))
	return strings.Join(strings.Fields(s), " ")
}
