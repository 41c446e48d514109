package app

import (
	"fmt"

	"github.com/rorycl/roster/console"
	"github.com/rorycl/roster/roster"
)

// Operator-facing messages.
const (
	msgInvalidOption  = "Opção inválida. Tente novamente."
	msgRegistered     = "Funcionário cadastrado com sucesso!"
	msgNoEmployees    = "Nenhum funcionário cadastrado."
	msgListHeader     = "Funcionários cadastrados:"
	msgNotFound       = "Funcionário não encontrado."
	msgFound          = "Foram encontrados %d funcionário(s) com o nome \"%s\":\n"
	msgRemoved        = "Funcionário removido com sucesso!"
	msgCancelled      = "Exclusão cancelada."
	msgNothingDeleted = "Opção inválida. Nenhum funcionário foi excluído."
	msgExternalChange = "Aviso: %s foi alterado por outro programa durante a sessão e será sobrescrito.\n"
	msgArchiveFailed  = "Aviso: não foi possível arquivar o cadastro."
)

// Register asks for a new employee's details and adds them to the roster.
func (s *Session) Register() error {
	fmt.Fprintln(s.out, "Cadastro de funcionário")
	name, err := s.in.ReadLine("Nome: ")
	if err != nil {
		return err
	}
	position, err := s.in.ReadLine("Cargo: ")
	if err != nil {
		return err
	}
	salary, err := s.readSalary()
	if err != nil {
		return err
	}

	e := roster.Employee{Name: name, Position: position, Salary: salary}
	s.store.Add(e)
	s.log.Debug("employee registered", "name", e.Name, "employees", s.store.Len())

	fmt.Fprintln(s.out, msgRegistered)
	return s.pause()
}

// readSalary reads a salary, asking again until it is not negative.
func (s *Session) readSalary() (float64, error) {
	for {
		salary, err := s.in.ReadFloat("Salário: ")
		if err != nil {
			return 0, err
		}
		if salary >= 0 {
			return salary, nil
		}
		fmt.Fprintln(s.out, console.InvalidNumber)
	}
}

// List prints the roster.
func (s *Session) List() error {
	printRoster(s.out, s.store.All())
	return s.pause()
}

// Delete searches the roster by name and removes the employee the operator
// picks from the matches.
func (s *Session) Delete() error {
	if s.store.Len() == 0 {
		fmt.Fprintln(s.out, msgNoEmployees)
		return nil
	}

	search, err := s.in.ReadLine("Digite o nome do funcionário a ser excluído: ")
	if err != nil {
		return err
	}

	matches := s.store.Find(search)
	if len(matches) == 0 {
		fmt.Fprintln(s.out, msgNotFound)
		return s.pause()
	}

	fmt.Fprintf(s.out, msgFound, len(matches), search)
	for i, m := range matches {
		fmt.Fprintf(s.out, "%d. %s\n", i+1, m.Employee)
	}

	choice, err := s.in.ReadInt("Digite o número do funcionário que deseja excluir (ou 0 para cancelar): ")
	if err != nil {
		return err
	}
	switch {
	case choice == 0:
		fmt.Fprintln(s.out, msgCancelled)
	case choice >= 1 && choice <= len(matches):
		m := matches[choice-1]
		if err := s.store.Remove(m); err != nil {
			return fmt.Errorf("delete failed: %w", err)
		}
		s.log.Debug("employee removed", "name", m.Employee.Name, "employees", s.store.Len())
		fmt.Fprintln(s.out, msgRemoved)
	default:
		fmt.Fprintln(s.out, msgNothingDeleted)
	}
	return s.pause()
}
