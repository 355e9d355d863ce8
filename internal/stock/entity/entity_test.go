package entity

import "testing"

func TestStatutForQuantite(t *testing.T) {
	cases := []struct {
		nom      string
		quantite int
		minimale int
		want     string
	}{
		{"zero est rupture", 0, 5, ProduitStatutRupture},
		{"négatif est rupture", -3, 5, ProduitStatutRupture},
		{"sous le seuil est critique", 3, 5, ProduitStatutCritique},
		{"au seuil est critique", 5, 5, ProduitStatutCritique},
		{"au-dessus du seuil est normale", 6, 5, ProduitStatutNormale},
		{"seuil zéro et stock positif", 1, 0, ProduitStatutNormale},
		{"seuil zéro et stock nul", 0, 0, ProduitStatutRupture},
	}

	for _, tc := range cases {
		t.Run(tc.nom, func(t *testing.T) {
			got := StatutForQuantite(tc.quantite, tc.minimale)
			if got != tc.want {
				t.Fatalf("StatutForQuantite(%d, %d) = %s, want %s", tc.quantite, tc.minimale, got, tc.want)
			}
		})
	}
}

func TestCommandeTransitions(t *testing.T) {
	allowed := [][2]string{
		{CommandeStatutEnCours, CommandeStatutValide},
		{CommandeStatutEnCours, CommandeStatutLivree},
		{CommandeStatutEnCours, CommandeStatutEnRetour},
		{CommandeStatutEnCours, CommandeStatutAnnulee},
		{CommandeStatutValide, CommandeStatutLivree},
		{CommandeStatutValide, CommandeStatutEnRetour},
		{CommandeStatutValide, CommandeStatutAnnulee},
		{CommandeStatutEnRetour, CommandeStatutLivree},
	}
	for _, tr := range allowed {
		if !TransitionAllowed(ValidCommandeTransitions, tr[0], tr[1]) {
			t.Errorf("expected %s -> %s to be allowed", tr[0], tr[1])
		}
	}

	forbidden := [][2]string{
		{CommandeStatutLivree, CommandeStatutEnCours},
		{CommandeStatutLivree, CommandeStatutAnnulee},
		{CommandeStatutAnnulee, CommandeStatutLivree},
		{CommandeStatutAnnulee, CommandeStatutEnCours},
		{CommandeStatutEnRetour, CommandeStatutAnnulee},
		{CommandeStatutValide, CommandeStatutEnCours},
	}
	for _, tr := range forbidden {
		if TransitionAllowed(ValidCommandeTransitions, tr[0], tr[1]) {
			t.Errorf("expected %s -> %s to be forbidden", tr[0], tr[1])
		}
	}
}

func TestDemandeTransitions(t *testing.T) {
	if !TransitionAllowed(ValidDemandeTransitions, DemandeStatutEnAttente, DemandeStatutApprouvee) {
		t.Error("expected EN_ATTENTE -> APPROUVEE to be allowed")
	}
	if !TransitionAllowed(ValidDemandeTransitions, DemandeStatutEnAttente, DemandeStatutRejetee) {
		t.Error("expected EN_ATTENTE -> REJETEE to be allowed")
	}
	if !TransitionAllowed(ValidDemandeTransitions, DemandeStatutApprouvee, DemandeStatutPrise) {
		t.Error("expected APPROUVEE -> PRISE to be allowed")
	}

	// terminal states
	for _, from := range []string{DemandeStatutRejetee, DemandeStatutPrise} {
		for _, to := range []string{DemandeStatutEnAttente, DemandeStatutApprouvee, DemandeStatutRejetee, DemandeStatutPrise} {
			if TransitionAllowed(ValidDemandeTransitions, from, to) {
				t.Errorf("expected %s -> %s to be forbidden", from, to)
			}
		}
	}
	if TransitionAllowed(ValidDemandeTransitions, DemandeStatutEnAttente, DemandeStatutPrise) {
		t.Error("expected EN_ATTENTE -> PRISE to be forbidden")
	}
}

func TestDemandeExcTransitions(t *testing.T) {
	chain := []string{
		DemandeExcStatutEnAttente,
		DemandeExcStatutAcceptee,
		DemandeExcStatutCommandee,
		DemandeExcStatutLivree,
		DemandeExcStatutPrise,
	}
	for i := 0; i < len(chain)-1; i++ {
		if !TransitionAllowed(ValidDemandeExcTransitions, chain[i], chain[i+1]) {
			t.Errorf("expected %s -> %s to be allowed", chain[i], chain[i+1])
		}
	}

	if !TransitionAllowed(ValidDemandeExcTransitions, DemandeExcStatutEnAttente, DemandeExcStatutRejetee) {
		t.Error("expected EN_ATTENTE -> REJETEE to be allowed")
	}

	// no skipping steps, no going back
	if TransitionAllowed(ValidDemandeExcTransitions, DemandeExcStatutEnAttente, DemandeExcStatutCommandee) {
		t.Error("expected EN_ATTENTE -> COMMANDEE to be forbidden")
	}
	if TransitionAllowed(ValidDemandeExcTransitions, DemandeExcStatutAcceptee, DemandeExcStatutLivree) {
		t.Error("expected ACCEPTEE -> LIVREE to be forbidden")
	}
	if TransitionAllowed(ValidDemandeExcTransitions, DemandeExcStatutLivree, DemandeExcStatutCommandee) {
		t.Error("expected LIVREE -> COMMANDEE to be forbidden")
	}
	if TransitionAllowed(ValidDemandeExcTransitions, DemandeExcStatutRejetee, DemandeExcStatutAcceptee) {
		t.Error("expected REJETEE -> ACCEPTEE to be forbidden")
	}
}
