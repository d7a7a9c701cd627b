package generation

import "fmt"

const basePrompt = "Edite esta foto de um estudante. Adicione uma beca de formatura preta com uma faixa azul. " +
	"Adicione também um capelo (chapéu de formatura) preto na cabeça. " +
	"O estilo deve ser realista, mantendo o rosto original. " +
	"MUITO IMPORTANTE: Substitua o fundo original da foto por um fundo de escadaria escura e elegante, " +
	"com um visual sofisticado, como o de uma universidade ou prédio formal."

const captionPrompt = " Na parte inferior da imagem, escreva o texto exatamente assim: \"%s\". " +
	"Preste muita atenção para não cometer erros de digitação. " +
	"O texto deve ter uma fonte elegante e legível, com cor que contraste bem com o fundo (branco ou amarelo)."

const closingPrompt = " Retorne apenas a imagem finalizada."

// BuildPrompt returns the editing instruction, asking the model to render
// caption only when it is non-empty.
func BuildPrompt(caption string) string {
	prompt := basePrompt
	if caption != "" {
		prompt += fmt.Sprintf(captionPrompt, caption)
	}
	return prompt + closingPrompt
}
