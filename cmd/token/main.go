package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tatamehub/academia/internal/auth"
)

// Utilitário de desenvolvimento: emite um JWT de acesso para testar a
// API sem passar pelo fluxo de login.
func main() {
	subject := flag.String("subject", "", "id do usuário (uuid)")
	tipo := flag.String("tipo", "aluno", "tipo de perfil: aluno, professor ou gestor")
	academia := flag.String("academia", "", "id da academia (opcional)")
	profile := flag.String("profile", "", "id do perfil (opcional)")
	ttl := flag.Duration("ttl", time.Hour, "validade do token")
	flag.Parse()

	if *subject == "" {
		fmt.Fprintln(os.Stderr, "usage: token -subject <uuid> [-tipo aluno|professor|gestor] [-academia uuid] [-profile uuid] [-ttl 1h]")
		os.Exit(1)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET não definido")
		os.Exit(1)
	}

	manager := auth.NewJWTManager(secret, *ttl)
	signed, _, err := manager.GenerateAccessToken(*subject, *tipo, *academia, *profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "token error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(signed)
}
