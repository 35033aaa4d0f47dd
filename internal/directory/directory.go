// Package directory serves the console's client, case and dashboard
// datasets. The product ships these as fixed in-memory data until the
// remote API grows the matching endpoints.
package directory

import "github.com/jurisconnect/console/internal/domain"

type Service struct {
	clients   []domain.Client
	cases     []domain.Case
	dashboard domain.DashboardSummary
}

func NewService() *Service {
	return &Service{
		clients: []domain.Client{
			{ID: "1", Name: "João Silva", Email: "joao.silva@email.com", Phone: "(11) 98765-4321", Type: "Pessoa Física", Status: "Ativo", Cases: 3},
			{ID: "2", Name: "Maria Santos", Email: "maria.santos@empresa.com", Phone: "(11) 91234-5678", Type: "Pessoa Física", Status: "Ativo", Cases: 1},
			{ID: "3", Name: "Tech Solutions Ltda", Email: "contato@techsolutions.com", Phone: "(11) 3456-7890", Type: "Pessoa Jurídica", Status: "Ativo", Cases: 2},
			{ID: "4", Name: "Carlos Mendes", Email: "carlos.mendes@email.com", Phone: "(21) 99876-5432", Type: "Pessoa Física", Status: "Inativo", Cases: 0},
		},
		cases: []domain.Case{
			{ID: "1", Number: "0001234-55.2025.8.26.0100", Title: "Silva vs Tech Corp", Client: "João Silva", Type: "Trabalhista", Status: "Em Andamento", NextDeadline: "28/04/2025", ResponsibleAttorney: "Dr. Pedro Almeida"},
			{ID: "2", Number: "0002345-66.2025.8.26.0100", Title: "Pereira vs Banco Nacional", Client: "Maria Pereira", Type: "Cível", Status: "Aguardando Audiência", NextDeadline: "15/05/2025", ResponsibleAttorney: "Dra. Ana Costa"},
			{ID: "3", Number: "0003456-77.2025.8.26.0100", Title: "Tech Solutions vs Fornecedor X", Client: "Tech Solutions Ltda", Type: "Empresarial", Status: "Em Andamento", NextDeadline: "02/06/2025", ResponsibleAttorney: "Dr. Pedro Almeida"},
		},
		dashboard: domain.DashboardSummary{
			Stats: []domain.Stat{
				{Title: "Clientes Ativos", Value: "45", Trend: domain.StatTrend{Value: 12, IsPositive: true}},
				{Title: "Casos Ativos", Value: "28", Trend: domain.StatTrend{Value: 5, IsPositive: true}},
				{Title: "Prazos Próximos", Value: "8", Trend: domain.StatTrend{Value: 2, IsPositive: false}},
				{Title: "Faturamento Mensal", Value: "R$ 58.500", Trend: domain.StatTrend{Value: 18, IsPositive: true}},
			},
			Tasks: []domain.Task{
				{ID: "1", Title: "Preparar defesa para caso Silva vs Tech Corp", Due: "25/04/2025", Priority: "alta"},
				{ID: "2", Title: "Protocolar recurso no processo 0002345-66", Due: "30/04/2025", Priority: "média"},
				{ID: "3", Title: "Reunião com cliente Tech Solutions", Due: "05/05/2025", Priority: "baixa", Done: true},
			},
		},
	}
}

func (s *Service) Clients() []domain.Client { return s.clients }

func (s *Service) Cases() []domain.Case { return s.cases }

func (s *Service) Dashboard() domain.DashboardSummary { return s.dashboard }
